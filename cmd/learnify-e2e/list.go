package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the suites and cases of the catalogue",
	RunE:  listCases,
}

func listCases(cmd *cobra.Command, args []string) error {
	catalogue, err := loadCatalogue()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	total := 0
	for _, s := range catalogue.Suites {
		fmt.Fprintln(out, color.CyanString("%s (%d) %s", s.Name, len(s.Cases), s.Title))
		for _, c := range s.Cases {
			line := fmt.Sprintf("  %-28s %s", c.Name, c.Path)
			if len(c.Fallbacks) > 0 {
				line += fmt.Sprintf(" %v", c.Fallbacks)
			}
			if c.Viewport != nil {
				line += color.YellowString(" @%dx%d", c.Viewport.Width, c.Viewport.Height)
			}
			fmt.Fprintln(out, line)
		}
		total += len(s.Cases)
	}
	fmt.Fprintf(out, "Total: %d case(s)\n", total)
	return nil
}
