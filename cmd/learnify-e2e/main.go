package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "learnify-e2e",
		Short: "Browser smoke and acceptance tests for Learnify",
		Long: `Runs the Learnify case catalogue in a real browser, either through
chromedriver (selenium) or the DevTools protocol (rod), and writes a JSON report.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

type Flags struct {
	Verbose         bool
	EnvFile         string
	Strictness      string
	Driver          string
	BaseURL         string
	Report          string
	Catalogue       string
	SnapshotDir     string
	UpdateSnapshots bool
	Headful         bool
	Query           string
}

var GlobalFlags Flags

// errFailedCases makes the process exit with 1 without printing anything else.
type errFailedCases struct{ failed int }

func (e errFailedCases) Error() string { return fmt.Sprintf("%d case(s) failed", e.failed) }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&GlobalFlags.Verbose, "verbose", "v", false, "Log every navigation and lookup")
	rootCmd.PersistentFlags().StringVar(&GlobalFlags.EnvFile, "env-file", ".env", "Environment file loaded before reading the configuration")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)

	// Run cmd
	runCmd.Flags().StringVarP(&GlobalFlags.Strictness, "strictness", "s", "", "strict or soft, defaults to LEARNIFY_STRICTNESS or soft")
	runCmd.Flags().StringVarP(&GlobalFlags.Driver, "driver", "d", "", "selenium or rod, defaults to LEARNIFY_DRIVER or selenium")
	runCmd.Flags().StringVarP(&GlobalFlags.BaseURL, "base-url", "u", "", "Application URL, defaults to APP_URL")
	runCmd.Flags().StringVarP(&GlobalFlags.Report, "report", "r", "reports/learnify.json", "Path of the JSON report, empty to skip it")
	runCmd.Flags().StringVarP(&GlobalFlags.Catalogue, "catalogue", "c", "", "Case catalogue file, defaults to the embedded Learnify catalogue")
	runCmd.Flags().StringVar(&GlobalFlags.SnapshotDir, "snapshot-dir", "", "Directory of page text snapshots")
	runCmd.Flags().BoolVar(&GlobalFlags.UpdateSnapshots, "update-snapshots", false, "Rewrite snapshots instead of comparing them")
	runCmd.Flags().BoolVar(&GlobalFlags.Headful, "headful", false, "Show the browser window")

	// List cmd
	listCmd.Flags().StringVarP(&GlobalFlags.Catalogue, "catalogue", "c", "", "Case catalogue file, defaults to the embedded Learnify catalogue")

	// Report cmd
	reportCmd.Flags().StringVarP(&GlobalFlags.Query, "query", "q", "", "JSONPath expression evaluated against the report, e.g. $.cases[?(@.status==\"fail\")].name")
}

func newLogger() (*zap.Logger, error) {
	if GlobalFlags.Verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(errFailedCases); !ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
