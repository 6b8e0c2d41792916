package harness

import (
	"errors"
	"fmt"
	"time"
)

// CheckKind names what a Check asserts.
type CheckKind string

const (
	CheckPresent  CheckKind = "present"
	CheckCount    CheckKind = "count"
	CheckText     CheckKind = "text"
	CheckSource   CheckKind = "source"
	CheckHidden   CheckKind = "hidden"
	CheckClick    CheckKind = "click"
	CheckType     CheckKind = "type"
	CheckSnapshot CheckKind = "snapshot"
)

// Check is one assertion of a case. Strictness overrides the suite's policy
// for this check only.
type Check struct {
	Kind       CheckKind   `yaml:"kind"`
	Locator    Locator     `yaml:"locator,omitempty"`
	Contains   []string    `yaml:"contains,omitempty"`
	Min        int         `yaml:"min,omitempty"`
	Input      string      `yaml:"input,omitempty"`
	Message    string      `yaml:"message,omitempty"`
	Strictness *Strictness `yaml:"strictness,omitempty"`
}

func (c Check) Validate() error {
	switch c.Kind {
	case CheckPresent, CheckHidden, CheckClick:
		return c.Locator.Validate()
	case CheckCount:
		if c.Min < 1 {
			return fmt.Errorf("count check on %s: min must be at least 1", c.Locator)
		}
		return c.Locator.Validate()
	case CheckText:
		if len(c.Contains) == 0 {
			return fmt.Errorf("text check on %s: contains is empty", c.Locator)
		}
		return c.Locator.Validate()
	case CheckType:
		if c.Input == "" {
			return fmt.Errorf("type check on %s: input is empty", c.Locator)
		}
		return c.Locator.Validate()
	case CheckSource:
		if len(c.Contains) == 0 {
			return errors.New("source check: contains is empty")
		}
		return nil
	case CheckSnapshot:
		return nil
	default:
		return fmt.Errorf("unknown check kind %q", c.Kind)
	}
}

// Policy returns the strictness this check runs with under suite policy def.
func (c Check) Policy(def Strictness) Strictness {
	if c.Strictness != nil {
		return *c.Strictness
	}
	return def
}

type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CaseSpec describes a single test case: where to go, how to know the page
// is ready and what to check once it is.
type CaseSpec struct {
	Name      string        `yaml:"name"`
	Title     string        `yaml:"title"`
	Path      string        `yaml:"path"`
	Fallbacks []string      `yaml:"fallbacks,omitempty"`
	MinLength int           `yaml:"min_length"`
	Settle    time.Duration `yaml:"settle,omitempty"`
	Ready     *Locator      `yaml:"ready,omitempty"`
	Spinner   *Locator      `yaml:"spinner,omitempty"`
	Viewport  *Viewport     `yaml:"viewport,omitempty"`
	Checks    []Check       `yaml:"checks,omitempty"`
}

func (c CaseSpec) Validate() error {
	if c.Name == "" {
		return errors.New("case without name")
	}
	if c.MinLength < 0 {
		return fmt.Errorf("case %s: negative min_length", c.Name)
	}
	if c.Viewport != nil && (c.Viewport.Width <= 0 || c.Viewport.Height <= 0) {
		return fmt.Errorf("case %s: invalid viewport %dx%d", c.Name, c.Viewport.Width, c.Viewport.Height)
	}
	for _, l := range []*Locator{c.Ready, c.Spinner} {
		if l == nil {
			continue
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("case %s: %w", c.Name, err)
		}
	}
	for i, check := range c.Checks {
		if err := check.Validate(); err != nil {
			return fmt.Errorf("case %s: check %d: %w", c.Name, i+1, err)
		}
	}
	return nil
}

// Candidates is the path followed by its fallbacks.
func (c CaseSpec) Candidates() []string {
	return append([]string{c.Path}, c.Fallbacks...)
}

// SuiteSpec is an ordered group of cases sharing one Session.
type SuiteSpec struct {
	Name  string     `yaml:"name"`
	Title string     `yaml:"title"`
	Cases []CaseSpec `yaml:"cases"`
}

func (s SuiteSpec) Validate() error {
	if s.Name == "" {
		return errors.New("suite without name")
	}
	seen := make(map[string]bool, len(s.Cases))
	for _, c := range s.Cases {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("suite %s: %w", s.Name, err)
		}
		if seen[c.Name] {
			return fmt.Errorf("suite %s: duplicate case %s", s.Name, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func (s SuiteSpec) Case(name string) (CaseSpec, bool) {
	for _, c := range s.Cases {
		if c.Name == name {
			return c, true
		}
	}
	return CaseSpec{}, false
}
