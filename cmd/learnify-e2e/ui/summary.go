// Package ui renders run progress and results for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/padaiyal/learnify-e2e/harness"
)

const rule = "════════════════════════════════════════════════════════════"

// RenderSummary writes the counters of a run followed by the failed and
// skipped cases and every note soft checks left behind.
func RenderSummary(w io.Writer, title string, outcomes []harness.Outcome, duration time.Duration) {
	summary := harness.Summarize(outcomes)

	fmt.Fprintln(w)
	fmt.Fprintln(w, color.CyanString("╔%s╗", rule))
	fmt.Fprintln(w, color.CyanString("║%s║", center(title, len([]rune(rule)))))
	fmt.Fprintln(w, color.CyanString("╚%s╝", rule))
	fmt.Fprintln(w)

	fmt.Fprintln(w, color.GreenString("✓ Passed: %d", summary.Passed))
	fmt.Fprintln(w, color.RedString("✗ Failed: %d", summary.Failed))
	fmt.Fprintln(w, color.YellowString("- Skipped: %d", summary.Skipped))
	fmt.Fprintf(w, "Total: %d | Duration: %s\n", summary.Total(), duration.Round(time.Millisecond))

	listCases(w, "Failed cases", color.RedString, outcomes, harness.StatusFail)
	listCases(w, "Skipped cases", color.YellowString, outcomes, harness.StatusSkip)

	var notes []string
	for _, o := range outcomes {
		for _, n := range o.Notes {
			notes = append(notes, fmt.Sprintf("%s: %s", caseRef(o), n))
		}
	}
	if len(notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, color.CyanString("Notes"))
		for _, n := range notes {
			fmt.Fprintf(w, "  %s\n", n)
		}
	}
}

func listCases(w io.Writer, heading string, paint func(string, ...interface{}) string, outcomes []harness.Outcome, status harness.Status) {
	i := 0
	for _, o := range outcomes {
		if o.Status != status {
			continue
		}
		if i == 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, paint(heading))
		}
		i++
		fmt.Fprintln(w, paint("%d. %s", i, caseRef(o)))
		if o.Reason != "" {
			fmt.Fprintf(w, "   Reason: %s\n", o.Reason)
		}
	}
}

func caseRef(o harness.Outcome) string {
	if o.Suite == "" {
		return o.Case
	}
	return o.Suite + "/" + o.Case
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
