package e2e

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/padaiyal/learnify-e2e/harness"
	"github.com/padaiyal/learnify-e2e/suites"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// SuiteTimeout bounds a whole suite, including the browser start.
const SuiteTimeout = 10 * time.Minute

var Config *harness.Config
var Catalogue *suites.Catalogue
var Logger *zap.Logger
var ReportPath string

var reportMu sync.Mutex
var reports = map[harness.Strictness]*harness.Report{}

/*
Generic methods for running the tests
*/

func SetUp() {
	var err error

	Logger, err = zap.NewDevelopment()
	if err != nil {
		log.Fatal("Could not create logger: ", err)
	}

	// the .env file is looked up next to the tests and at the repository root
	Config, err = harness.LoadConfig(".env", filepath.Join("..", "..", ".env"))
	if err != nil {
		log.Fatal("Could not load configuration: ", err)
	}

	Catalogue, err = suites.Default()
	if err != nil {
		log.Fatal("Could not load the case catalogue: ", err)
	}

	ReportPath = os.Getenv("LEARNIFY_REPORT")
	Logger.Info("Setting up e2e run",
		zap.String("base_url", Config.BaseURL),
		zap.String("backend", string(Config.Backend)),
		zap.String("report", ReportPath),
	)
}

func TearDown() {
	defer func() { _ = Logger.Sync() }()
	if ReportPath == "" {
		return
	}
	reportMu.Lock()
	defer reportMu.Unlock()
	for strictness, report := range reports {
		path := reportFileName(ReportPath, strictness)
		if err := report.Write(path); err != nil {
			log.Println("Error writing report:", err)
			continue
		}
		Logger.Info("report written", zap.String("path", path), zap.Stringer("strictness", strictness))
	}
}

// reportFileName derives one report per strictness from the configured path,
// e.g. reports/e2e.json becomes reports/e2e-strict.json.
func reportFileName(path string, strictness harness.Strictness) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strictness.String() + ext
}

func recordOutcome(strictness harness.Strictness, out harness.Outcome) {
	reportMu.Lock()
	defer reportMu.Unlock()
	report, ok := reports[strictness]
	if !ok {
		report = harness.NewReport(Config, strictness)
		reports[strictness] = report
	}
	report.Add(out)
}

// StartSession opens a browser for one suite. The returned session must be
// closed by the caller.
func StartSession(t *testing.T) *harness.Session {
	cfg := *Config
	session, err := harness.StartSession(context.Background(), &cfg, zaptest.NewLogger(t))
	if errors.Is(err, harness.ErrDriverUnavailable) {
		t.Fatalf("Browser driver is not available for backend %s: %s", cfg.Backend, err)
	}
	if err != nil {
		t.Fatalf("Error starting browser session: %s", err)
	}
	return session
}

// ReportOutcome turns a case outcome into the matching testing.T verdict.
func ReportOutcome(t *testing.T, out harness.Outcome) {
	for _, note := range out.Notes {
		t.Logf("Note: %s", note)
	}
	switch out.Status {
	case harness.StatusSkip:
		t.Skipf("Skipping %s: %s", out.Case, out.Reason)
	case harness.StatusFail:
		t.Errorf("%s failed in state %s: %s", out.Case, out.State, out.Reason)
	default:
		t.Logf("Finished running '%s' in %s", out.Case, out.Duration.Round(time.Millisecond))
	}
}
