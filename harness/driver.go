package harness

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrDriverUnavailable is returned when no browser could be started or reached.
// It aborts suite setup and is never retried.
var ErrDriverUnavailable = errors.New("browser driver unavailable")

// Element is a single DOM node found by a Driver.
type Element interface {
	Text() (string, error)
	// Attribute returns "" without error when the attribute is not set.
	Attribute(name string) (string, error)
	Displayed() (bool, error)
	Click() error
	SendKeys(keys string) error
}

// Driver is the browser a Session controls. FindElements returns an empty
// slice, not an error, when nothing matches.
type Driver interface {
	Get(url string) error
	PageSource() (string, error)
	BodyText() (string, error)
	FindElements(q Query) ([]Element, error)
	ResizeWindow(width, height int) error
	CurrentURL() (string, error)
	Quit() error
}

// LaunchFunc starts a Driver for cfg.
type LaunchFunc func(ctx context.Context, cfg *Config, log *zap.Logger) (Driver, error)

// Launch starts the backend named by cfg.Backend.
func Launch(ctx context.Context, cfg *Config, log *zap.Logger) (Driver, error) {
	switch cfg.Backend {
	case BackendSelenium, "":
		return launchSelenium(ctx, cfg, log)
	case BackendRod:
		return launchRod(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported driver backend: %q", cfg.Backend)
	}
}

// chromeArgs are shared by both backends.
func chromeArgs(cfg *Config) []string {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		fmt.Sprintf("--window-size=%d,%d", cfg.Width, cfg.Height),
		"--disable-blink-features=AutomationControlled",
	}
	if cfg.Headless {
		args = append([]string{"--headless=new"}, args...)
	}
	return args
}
