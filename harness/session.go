package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrSessionClosed is returned by operations on a Session after Close.
var ErrSessionClosed = errors.New("session closed")

// Session is one browser bound to a base URL. It belongs to a single suite
// at a time and is driven by one case at a time; nothing here is safe for
// concurrent use.
type Session struct {
	cfg    *Config
	driver Driver
	log    *zap.Logger
	closed bool
}

// StartSession launches the browser described by cfg. An error wraps
// ErrDriverUnavailable when the browser or its driver could not be started.
func StartSession(ctx context.Context, cfg *Config, log *zap.Logger) (*Session, error) {
	return StartSessionWith(ctx, cfg, log, Launch)
}

// StartSessionWith is StartSession with a custom launcher.
func StartSessionWith(ctx context.Context, cfg *Config, log *zap.Logger, launch LaunchFunc) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	driver, err := launch(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("browser session started",
		zap.String("backend", string(cfg.Backend)),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("headless", cfg.Headless),
	)
	return &Session{cfg: cfg, driver: driver, log: log}, nil
}

func (s *Session) Config() *Config { return s.cfg }

func (s *Session) URL(path string) string { return s.cfg.URL(path) }

// Navigate loads the base URL joined with path.
func (s *Session) Navigate(path string) error {
	if s.closed {
		return ErrSessionClosed
	}
	target := s.URL(path)
	s.log.Debug("navigate", zap.String("url", target))
	if err := s.driver.Get(target); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}
	return nil
}

// Settle waits for the page to be ready. With a ready locator it polls for
// that element, with a spinner locator it polls until the spinner is gone.
// Without either it sleeps for delay. A readiness signal that never shows up
// is returned as an ErrWaitTimeout error for the caller to judge.
func (s *Session) Settle(ctx context.Context, ready, spinner *Locator, delay time.Duration) error {
	if ready == nil && spinner == nil {
		return Sleep(ctx, delay)
	}
	if ready != nil {
		if err := s.WaitPresent(ctx, *ready); err != nil {
			return err
		}
	}
	if spinner != nil {
		if err := s.WaitHidden(ctx, *spinner); err != nil {
			return err
		}
	}
	return nil
}

// WaitPresent polls until loc matches at least one element.
func (s *Session) WaitPresent(ctx context.Context, loc Locator) error {
	err := WaitUntil(ctx, s.cfg.WaitTimeout, s.cfg.PollInterval, func() (bool, error) {
		found, err := s.Find(loc)
		return len(found) > 0, err
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", loc, err)
	}
	return nil
}

// WaitHidden polls until no element matched by loc is displayed.
func (s *Session) WaitHidden(ctx context.Context, loc Locator) error {
	err := WaitUntil(ctx, s.cfg.WaitTimeout, s.cfg.PollInterval, func() (bool, error) {
		found, err := s.Find(loc)
		if err != nil {
			return false, err
		}
		for _, el := range found {
			visible, err := el.Displayed()
			if err != nil {
				// stale nodes disappear between lookup and check
				continue
			}
			if visible {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("wait for %s to disappear: %w", loc, err)
	}
	return nil
}

// Find returns the elements matched by loc, after its attribute filter.
func (s *Session) Find(loc Locator) ([]Element, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	q, err := loc.Query()
	if err != nil {
		return nil, err
	}
	found, err := s.driver.FindElements(q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", loc, err)
	}
	if loc.Attr == "" {
		return found, nil
	}
	matched := found[:0]
	for _, el := range found {
		ok, err := loc.Match(el)
		if err != nil {
			return nil, fmt.Errorf("read %s of %s: %w", loc.Attr, loc, err)
		}
		if ok {
			matched = append(matched, el)
		}
	}
	return matched, nil
}

// PageSource returns the current DOM serialized as HTML.
func (s *Session) PageSource() (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.driver.PageSource()
}

func (s *Session) BodyText() (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.driver.BodyText()
}

func (s *Session) CurrentURL() (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.driver.CurrentURL()
}

// Resize sets the browser window to width x height.
func (s *Session) Resize(width, height int) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.log.Debug("resize window", zap.Int("width", width), zap.Int("height", height))
	return s.driver.ResizeWindow(width, height)
}

// WithViewport runs fn at width x height and restores the configured window
// size afterwards, whatever fn returned.
func (s *Session) WithViewport(width, height int, fn func() error) (err error) {
	if err := s.Resize(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	defer func() {
		if restoreErr := s.Resize(s.cfg.Width, s.cfg.Height); restoreErr != nil && err == nil {
			err = fmt.Errorf("restore %dx%d: %w", s.cfg.Width, s.cfg.Height, restoreErr)
		}
	}()
	return fn()
}

// AssertPresence checks that loc matches at least one element right now.
func (s *Session) AssertPresence(loc Locator, strictness Strictness) Result {
	return s.AssertCount(loc, 1, strictness, "")
}

// AssertCount checks that loc matches at least min elements. message
// replaces the default failure text.
func (s *Session) AssertCount(loc Locator, min int, strictness Strictness, message string) Result {
	found, err := s.Find(loc)
	if err != nil {
		return missed(strictness, err.Error())
	}
	if len(found) >= min {
		s.log.Debug("found", zap.Stringer("locator", loc), zap.Int("count", len(found)))
		return passed("")
	}
	if message == "" {
		if min <= 1 {
			message = fmt.Sprintf("%s should exist", loc)
		} else {
			message = fmt.Sprintf("%s should match at least %d elements, found %d", loc, min, len(found))
		}
	}
	return missed(strictness, message)
}

// AssertText checks that an element matched by loc has text containing one
// of words, ignoring case.
func (s *Session) AssertText(loc Locator, words []string, strictness Strictness, message string) Result {
	found, err := s.Find(loc)
	if err != nil {
		return missed(strictness, err.Error())
	}
	var texts []string
	for _, el := range found {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
		if containsAny(text, words) {
			return passed("")
		}
	}
	if message == "" {
		message = fmt.Sprintf("no %s with text containing %q (saw %q)", loc, words, texts)
	}
	return missed(strictness, message)
}

// AssertSource checks that the page source contains one of words, ignoring case.
func (s *Session) AssertSource(words []string, strictness Strictness, message string) Result {
	source, err := s.PageSource()
	if err != nil {
		return failed("read page source: %v", err)
	}
	if containsAny(source, words) {
		return passed("")
	}
	if message == "" {
		message = fmt.Sprintf("page source should contain one of %q", words)
	}
	return missed(strictness, message)
}

// AssertHidden waits until nothing matched by loc is displayed.
func (s *Session) AssertHidden(ctx context.Context, loc Locator, strictness Strictness, message string) Result {
	if err := s.WaitHidden(ctx, loc); err != nil {
		if message == "" {
			message = err.Error()
		}
		return missed(strictness, message)
	}
	return passed("")
}

// Click clicks the first displayed element matched by loc, waits for the page
// to settle and, when words is not empty, checks that the URL contains one of them.
func (s *Session) Click(ctx context.Context, loc Locator, words []string, strictness Strictness, message string) Result {
	el, res := s.first(loc, strictness, message)
	if el == nil {
		return res
	}
	if err := el.Click(); err != nil {
		return missed(strictness, fmt.Sprintf("click %s: %v", loc, err))
	}
	if err := Sleep(ctx, s.cfg.SettleDelay/2); err != nil {
		return failed("%v", err)
	}
	if len(words) == 0 {
		return passed("")
	}
	current, err := s.CurrentURL()
	if err != nil {
		return failed("read current url: %v", err)
	}
	if containsAny(current, words) {
		return passed("")
	}
	return missed(strictness, fmt.Sprintf("after clicking %s the url %s should contain one of %q", loc, current, words))
}

// Type sends keys to the first displayed element matched by loc.
func (s *Session) Type(ctx context.Context, loc Locator, keys string, strictness Strictness, message string) Result {
	el, res := s.first(loc, strictness, message)
	if el == nil {
		return res
	}
	if err := el.SendKeys(keys); err != nil {
		return missed(strictness, fmt.Sprintf("type into %s: %v", loc, err))
	}
	if err := Sleep(ctx, s.cfg.SettleDelay/2); err != nil {
		return failed("%v", err)
	}
	return passed("")
}

// first returns the first displayed match of loc, or the first match when none
// reports as displayed. A nil Element comes with the miss to report.
func (s *Session) first(loc Locator, strictness Strictness, message string) (Element, Result) {
	found, err := s.Find(loc)
	if err != nil {
		return nil, missed(strictness, err.Error())
	}
	if len(found) == 0 {
		if message == "" {
			message = fmt.Sprintf("%s should exist", loc)
		}
		return nil, missed(strictness, message)
	}
	for _, el := range found {
		if ok, err := el.Displayed(); err == nil && ok {
			return el, Result{}
		}
	}
	return found[0], Result{}
}

// Close quits the browser. It is safe to call more than once; only the first
// call reaches the driver.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.driver.Quit()
	if err != nil {
		s.log.Warn("closing browser session", zap.Error(err))
	} else {
		s.log.Info("browser session closed")
	}
	return err
}

func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
