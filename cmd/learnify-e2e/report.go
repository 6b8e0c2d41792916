package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/padaiyal/learnify-e2e/harness"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Summarize or query a JSON report written by run",
	Args:  cobra.ExactArgs(1),
	RunE:  showReport,
}

func showReport(cmd *cobra.Command, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	out := cmd.OutOrStdout()

	if GlobalFlags.Query != "" {
		result, err := harness.QueryReport(doc, GlobalFlags.Query)
		if err != nil {
			return err
		}
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode query result: %w", err)
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	}

	summary, err := harness.ReadSummary(doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run %s against %s (%s)\n",
		gjson.GetBytes(doc, "run_id").String(),
		gjson.GetBytes(doc, "base_url").String(),
		gjson.GetBytes(doc, "strictness").String(),
	)
	fmt.Fprintln(out, color.GreenString("✓ Passed: %d", summary.Passed))
	fmt.Fprintln(out, color.RedString("✗ Failed: %d", summary.Failed))
	fmt.Fprintln(out, color.YellowString("- Skipped: %d", summary.Skipped))
	gjson.GetBytes(doc, `cases.#(status=="fail")#`).ForEach(func(_, c gjson.Result) bool {
		fmt.Fprintf(out, "  %s/%s: %s\n", c.Get("suite").String(), c.Get("name").String(), c.Get("reason").String())
		return true
	})
	return nil
}
