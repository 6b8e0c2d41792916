package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/padaiyal/learnify-e2e/harness"
	"github.com/schollz/progressbar/v3"
)

// Progress is a terminal progress bar fed with case outcomes.
type Progress struct {
	bar     *progressbar.ProgressBar
	summary harness.Summary
}

func NewProgress(w io.Writer, count int) *Progress {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(describe(harness.Summary{})),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Progress{bar: bar}
}

// Observe counts out and moves the bar one step. It fits harness.WithObserver.
func (p *Progress) Observe(out harness.Outcome) {
	switch out.Status {
	case harness.StatusPass:
		p.summary.Passed++
	case harness.StatusFail:
		p.summary.Failed++
	case harness.StatusSkip:
		p.summary.Skipped++
	}
	p.bar.Describe(describe(p.summary))
	_ = p.bar.Add(1)
}

func (p *Progress) Summary() harness.Summary { return p.summary }

func (p *Progress) Finish() {
	_ = p.bar.Finish()
}

func describe(s harness.Summary) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[pass: %d", s.Passed) +
		" | " +
		color.RedString("fail: %d", s.Failed) +
		" | " +
		color.YellowString("skip: %d]", s.Skipped)
}
