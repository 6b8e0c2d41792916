package harness

import "time"

const (
	DefaultBaseURL    = "http://localhost:5173"
	DefaultBackend    = BackendSelenium
	DefaultDriverPath = "chromedriver"
	DefaultDriverPort = 4444

	DefaultWidth        = 1280
	DefaultHeight       = 720
	DefaultMobileWidth  = 375
	DefaultMobileHeight = 667

	DefaultPageLoadTimeout = 20 * time.Second
	DefaultWaitTimeout     = 10 * time.Second
	DefaultPollInterval    = 250 * time.Millisecond
	DefaultSettleDelay     = 2 * time.Second
	DefaultProbeTimeout    = 3 * time.Second

	DefaultSnapshotDir       = "testdata/snapshots"
	DefaultSnapshotTolerance = 0.9
)
