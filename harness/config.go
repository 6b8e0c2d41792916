package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names the browser automation library a Session drives.
type Backend string

const (
	BackendSelenium Backend = "selenium"
	BackendRod      Backend = "rod"
)

func ParseBackend(v string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(v))); b {
	case BackendSelenium, BackendRod:
		return b, nil
	default:
		return "", fmt.Errorf("unsupported driver backend: %q", v)
	}
}

// Config holds everything needed to start a Session and run cases against it.
type Config struct {
	// Application under test
	BaseURL string

	// Browser settings
	Backend     Backend
	Headless    bool
	DriverPath  string
	DriverPort  int
	RemoteURL   string
	BrowserPath string
	ControlURL  string
	Width       int
	Height      int

	// Timing
	PageLoadTimeout time.Duration
	WaitTimeout     time.Duration
	PollInterval    time.Duration
	SettleDelay     time.Duration
	ProbeTimeout    time.Duration

	// Assertion policy
	Strictness Strictness

	// Snapshots
	SnapshotDir       string
	SnapshotTolerance float64
	UpdateSnapshots   bool
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Backend:           DefaultBackend,
		Headless:          true,
		DriverPath:        DefaultDriverPath,
		DriverPort:        DefaultDriverPort,
		Width:             DefaultWidth,
		Height:            DefaultHeight,
		PageLoadTimeout:   DefaultPageLoadTimeout,
		WaitTimeout:       DefaultWaitTimeout,
		PollInterval:      DefaultPollInterval,
		SettleDelay:       DefaultSettleDelay,
		ProbeTimeout:      DefaultProbeTimeout,
		Strictness:        Soft,
		SnapshotDir:       DefaultSnapshotDir,
		SnapshotTolerance: DefaultSnapshotTolerance,
	}
}

// LoadConfig loads the given .env files (".env" when none are given), then
// applies the process environment on top of the defaults. Missing .env files
// are ignored and variables already set in the environment are not overridden.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := NewConfig()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from environment variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" && err == nil {
			if *dst, err = strconv.Atoi(v); err != nil {
				err = fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" && err == nil {
			if *dst, err = time.ParseDuration(v); err != nil {
				err = fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	str("APP_URL", &c.BaseURL)
	str("CHROMEDRIVER_PATH", &c.DriverPath)
	str("SELENIUM_URL", &c.RemoteURL)
	str("CHROME_BROWSER_PATH", &c.BrowserPath)
	str("ROD_CONTROL_URL", &c.ControlURL)
	str("LEARNIFY_SNAPSHOT_DIR", &c.SnapshotDir)
	num("CHROMEDRIVER_PORT", &c.DriverPort)
	dur("LEARNIFY_PAGE_LOAD_TIMEOUT", &c.PageLoadTimeout)
	dur("LEARNIFY_WAIT_TIMEOUT", &c.WaitTimeout)
	dur("LEARNIFY_SETTLE", &c.SettleDelay)
	if err != nil {
		return err
	}

	if v, ok := lookup("LEARNIFY_DRIVER"); ok && v != "" {
		if c.Backend, err = ParseBackend(v); err != nil {
			return fmt.Errorf("LEARNIFY_DRIVER: %w", err)
		}
	}
	if v, ok := lookup("LEARNIFY_STRICTNESS"); ok && v != "" {
		if c.Strictness, err = ParseStrictness(v); err != nil {
			return fmt.Errorf("LEARNIFY_STRICTNESS: %w", err)
		}
	}
	if v, ok := lookup("LEARNIFY_HEADLESS"); ok && v != "" {
		if c.Headless, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("LEARNIFY_HEADLESS: %w", err)
		}
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base url %q: missing host", c.BaseURL)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.DriverPort <= 0 || c.DriverPort > 65535 {
		return fmt.Errorf("invalid driver port %d", c.DriverPort)
	}
	if c.SnapshotTolerance < 0 || c.SnapshotTolerance > 1 {
		return fmt.Errorf("snapshot tolerance must be within [0, 1], got %v", c.SnapshotTolerance)
	}
	return nil
}

// URL joins the base URL and path.
func (c *Config) URL(path string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if path == "" || path == "/" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
