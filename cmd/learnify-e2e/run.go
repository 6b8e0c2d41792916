package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/padaiyal/learnify-e2e/cmd/learnify-e2e/ui"
	"github.com/padaiyal/learnify-e2e/harness"
	"github.com/padaiyal/learnify-e2e/suites"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// launchBrowser and probeTarget are replaced in tests.
var (
	launchBrowser harness.LaunchFunc = harness.Launch
	probeTarget   harness.ProbeFunc  = harness.IsTargetReachable
)

var runCmd = &cobra.Command{
	Use:   "run [suite...]",
	Short: "Run the case catalogue in a browser",
	Long: `Runs the named suites, or every suite of the catalogue, one browser session
per suite. Exits with status 1 when a case failed; skipped cases do not count.`,
	RunE: runSuites,
}

// loadRunConfig reads the environment and lets command line flags win over it.
func loadRunConfig() (*harness.Config, error) {
	cfg, err := harness.LoadConfig(GlobalFlags.EnvFile)
	if err != nil {
		return nil, err
	}
	if GlobalFlags.Strictness != "" {
		if cfg.Strictness, err = harness.ParseStrictness(GlobalFlags.Strictness); err != nil {
			return nil, err
		}
	}
	if GlobalFlags.Driver != "" {
		if cfg.Backend, err = harness.ParseBackend(GlobalFlags.Driver); err != nil {
			return nil, err
		}
	}
	if GlobalFlags.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(GlobalFlags.BaseURL, "/")
	}
	if GlobalFlags.SnapshotDir != "" {
		cfg.SnapshotDir = GlobalFlags.SnapshotDir
	}
	if GlobalFlags.Headful {
		cfg.Headless = false
	}
	cfg.UpdateSnapshots = GlobalFlags.UpdateSnapshots
	return cfg, cfg.Validate()
}

func loadCatalogue() (*suites.Catalogue, error) {
	if GlobalFlags.Catalogue == "" {
		return suites.Default()
	}
	return suites.Load(GlobalFlags.Catalogue)
}

func runSuites(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}
	catalogue, err := loadCatalogue()
	if err != nil {
		return err
	}
	selected, err := catalogue.Select(args...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	total := 0
	for _, s := range selected {
		total += len(s.Cases)
	}
	color.Cyan("Running %d case(s) of %d suite(s) against %s (%s, %s)\n",
		total, len(selected), cfg.BaseURL, cfg.Strictness, cfg.Backend)

	start := time.Now()
	report := harness.NewReport(cfg, cfg.Strictness)
	progress := ui.NewProgress(os.Stderr, total)
	for _, spec := range selected {
		outcomes, err := runSuite(ctx, cfg, spec, progress.Observe, log)
		if err != nil {
			progress.Finish()
			return err
		}
		report.Add(outcomes...)
	}
	progress.Finish()

	ui.RenderSummary(os.Stdout, "Learnify E2E Summary", report.Outcomes, time.Since(start))

	if GlobalFlags.Report != "" {
		if err := report.Write(GlobalFlags.Report); err != nil {
			return err
		}
		color.White("Report: %s (run %s)\n", GlobalFlags.Report, report.RunID)
	}
	if summary := report.Summary(); !summary.OK() {
		return errFailedCases{failed: summary.Failed}
	}
	return nil
}

// runSuite gives one suite its own browser session and closes it on every path.
func runSuite(ctx context.Context, cfg *harness.Config, spec harness.SuiteSpec, observe func(harness.Outcome), log *zap.Logger) ([]harness.Outcome, error) {
	suiteLog := log.Named(spec.Name)
	session, err := harness.StartSessionWith(ctx, cfg, suiteLog, launchBrowser)
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", spec.Name, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			suiteLog.Warn("close session", zap.Error(err))
		}
	}()

	runner := harness.NewRunner(session, cfg.Strictness,
		harness.WithObserver(observe),
		harness.WithLogger(suiteLog),
		harness.WithProbe(probeTarget),
	)
	return runner.Run(ctx, spec), nil
}
