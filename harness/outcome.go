package harness

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Strictness decides what a missing element means for a case.
type Strictness int

const (
	// Soft records a missing element as a note and keeps going.
	Soft Strictness = iota
	// Strict fails the case on a missing element.
	Strict
)

func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "soft"
}

func ParseStrictness(v string) (Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return Strict, nil
	case "soft", "smoke":
		return Soft, nil
	default:
		return Soft, fmt.Errorf("unknown strictness %q, expected strict or soft", v)
	}
}

func (s *Strictness) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStrictness(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Strictness) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Status is the terminal verdict of a case.
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusSkip:
		return "skip"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State tracks where a case is in its lifecycle:
//
//	NotStarted -> Navigated -> Settled -> Asserted -> Passed
//
// Failed is reachable from every non-terminal state, Skipped only before
// navigation. Settled may go back to Navigated when a fallback path is tried.
type State int

const (
	StateNotStarted State = iota
	StateNavigated
	StateSettled
	StateAsserted
	StatePassed
	StateFailed
	StateSkipped
)

var stateNames = [...]string{"not-started", "navigated", "settled", "asserted", "passed", "failed", "skipped"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) Terminal() bool {
	return s == StatePassed || s == StateFailed || s == StateSkipped
}

// CanMove reports whether to is a legal next state.
func (s State) CanMove(to State) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StateFailed:
		return true
	case StateSkipped:
		return s == StateNotStarted
	case StateNavigated:
		return s == StateNotStarted || s == StateSettled
	case StateSettled:
		return s == StateNavigated
	case StateAsserted:
		return s == StateSettled
	case StatePassed:
		return s == StateAsserted
	}
	return false
}

// Outcome is what a single case produced.
type Outcome struct {
	Suite    string
	Case     string
	Title    string
	Status   Status
	Reason   string
	Notes    []string
	State    State
	Duration time.Duration
}

// Summary counts outcomes by status.
type Summary struct {
	Passed  int
	Failed  int
	Skipped int
}

func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		case StatusSkip:
			s.Skipped++
		}
	}
	return s
}

func (s Summary) Total() int { return s.Passed + s.Failed + s.Skipped }

// OK is true when nothing failed. Skips do not count against a run.
func (s Summary) OK() bool { return s.Failed == 0 }

// Result is the verdict of one check within a case.
type Result struct {
	Failed  bool
	Message string
}

func passed(format string, args ...interface{}) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

func failed(format string, args ...interface{}) Result {
	return Result{Failed: true, Message: fmt.Sprintf(format, args...)}
}

// missed applies the strictness policy to something that was not found.
func missed(strictness Strictness, msg string) Result {
	return Result{Failed: strictness == Strict, Message: msg}
}
