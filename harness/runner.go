package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Runner executes cases one after another against a single Session.
type Runner struct {
	session    *Session
	strictness Strictness
	suite      string
	probe      ProbeFunc
	snapshots  *SnapshotStore
	observe    func(Outcome)
	log        *zap.Logger
}

type RunnerOption func(*Runner)

// WithProbe replaces the reachability probe.
func WithProbe(p ProbeFunc) RunnerOption {
	return func(r *Runner) { r.probe = p }
}

func WithSnapshots(s *SnapshotStore) RunnerOption {
	return func(r *Runner) { r.snapshots = s }
}

// WithObserver registers fn to be called with every finished outcome.
func WithObserver(fn func(Outcome)) RunnerOption {
	return func(r *Runner) { r.observe = fn }
}

func WithLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

func NewRunner(session *Session, strictness Strictness, opts ...RunnerOption) *Runner {
	r := &Runner{
		session:    session,
		strictness: strictness,
		probe:      IsTargetReachable,
		snapshots:  NewSnapshotStore(session.Config()),
		log:        session.log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Strictness() Strictness { return r.strictness }

// Run executes every case of suite in order. Cases left over after ctx is
// done are reported as skipped.
func (r *Runner) Run(ctx context.Context, suite SuiteSpec) []Outcome {
	outcomes := make([]Outcome, 0, len(suite.Cases))
	for _, spec := range suite.Cases {
		if err := ctx.Err(); err != nil {
			out := Outcome{Suite: suite.Name, Case: spec.Name, Title: spec.Title, Status: StatusSkip, State: StateSkipped, Reason: err.Error()}
			r.finish(out)
			outcomes = append(outcomes, out)
			continue
		}
		outcomes = append(outcomes, r.RunSuiteCase(ctx, suite.Name, spec))
	}
	return outcomes
}

// RunSuiteCase runs one case as part of the named suite, which names its
// snapshot and tags its outcome.
func (r *Runner) RunSuiteCase(ctx context.Context, suite string, spec CaseSpec) Outcome {
	prev := r.suite
	r.suite = suite
	defer func() { r.suite = prev }()
	return r.RunCase(ctx, spec)
}

// RunCase runs one case to a terminal state. It never panics: a panic inside
// a check becomes a failure.
func (r *Runner) RunCase(ctx context.Context, spec CaseSpec) (out Outcome) {
	start := time.Now()
	run := &caseRun{out: Outcome{Suite: r.suite, Case: spec.Name, Title: spec.Title, State: StateNotStarted}}
	defer func() {
		if p := recover(); p != nil {
			run.fail(fmt.Sprintf("panic: %v", p))
		}
		out = run.out
		out.Duration = time.Since(start)
		r.finish(out)
	}()

	if err := spec.Validate(); err != nil {
		run.fail(err.Error())
		return
	}

	cfg := r.session.Config()
	if !r.probe(ctx, cfg.BaseURL, cfg.ProbeTimeout) {
		run.skip(fmt.Sprintf("application at %s is not reachable", cfg.BaseURL))
		return
	}

	if spec.Viewport != nil {
		err := r.session.WithViewport(spec.Viewport.Width, spec.Viewport.Height, func() error {
			r.execute(ctx, spec, run)
			return nil
		})
		if err != nil && !run.out.State.Terminal() {
			run.fail(err.Error())
		} else if err != nil && run.out.Status == StatusPass {
			// restoring the window failed after the checks passed
			run.out.Status, run.out.State, run.out.Reason = StatusFail, StateFailed, err.Error()
		}
		return
	}
	r.execute(ctx, spec, run)
	return
}

func (r *Runner) execute(ctx context.Context, spec CaseSpec, run *caseRun) {
	source, ok := r.load(ctx, spec, run)
	if !ok {
		return
	}
	if len(source) <= spec.MinLength {
		run.fail(fmt.Sprintf("%s should return content: got %d characters, want more than %d",
			r.describe(spec), len(source), spec.MinLength))
		return
	}

	run.advance(StateAsserted)
	for _, check := range spec.Checks {
		res := r.evaluate(ctx, spec, check)
		if res.Failed {
			run.fail(res.Message)
			return
		}
		if res.Message != "" {
			run.note(res.Message)
		}
	}
	run.pass()
}

// load navigates to the case path, then to each fallback, until one returns
// more than MinLength characters. It returns the source of the last page loaded.
func (r *Runner) load(ctx context.Context, spec CaseSpec, run *caseRun) (string, bool) {
	cfg := r.session.Config()
	delay := spec.Settle
	if delay == 0 {
		delay = cfg.SettleDelay
	}

	var source string
	candidates := spec.Candidates()
	for i, path := range candidates {
		if err := r.session.Navigate(path); err != nil {
			run.fail(err.Error())
			return "", false
		}
		run.advance(StateNavigated)

		if err := r.session.Settle(ctx, spec.Ready, spec.Spinner, delay); err != nil {
			if !errors.Is(err, ErrWaitTimeout) {
				run.fail(err.Error())
				return "", false
			}
			run.note(fmt.Sprintf("page not ready: %v", err))
		}
		run.advance(StateSettled)

		var err error
		if source, err = r.session.PageSource(); err != nil {
			run.fail(fmt.Sprintf("read page source: %v", err))
			return "", false
		}
		if len(source) > spec.MinLength {
			if i > 0 {
				run.note(fmt.Sprintf("loaded fallback %s", path))
			}
			break
		}
	}
	return source, true
}

func (r *Runner) evaluate(ctx context.Context, spec CaseSpec, check Check) Result {
	policy := check.Policy(r.strictness)
	s := r.session
	switch check.Kind {
	case CheckPresent:
		if check.Message == "" {
			return s.AssertPresence(check.Locator, policy)
		}
		return s.AssertCount(check.Locator, 1, policy, check.Message)
	case CheckCount:
		return s.AssertCount(check.Locator, check.Min, policy, check.Message)
	case CheckText:
		return s.AssertText(check.Locator, check.Contains, policy, check.Message)
	case CheckSource:
		return s.AssertSource(check.Contains, policy, check.Message)
	case CheckHidden:
		return s.AssertHidden(ctx, check.Locator, policy, check.Message)
	case CheckClick:
		return s.Click(ctx, check.Locator, check.Contains, policy, check.Message)
	case CheckType:
		return s.Type(ctx, check.Locator, check.Input, policy, check.Message)
	case CheckSnapshot:
		return r.compareSnapshot(spec, policy)
	}
	return failed("unknown check kind %q", check.Kind)
}

func (r *Runner) compareSnapshot(spec CaseSpec, policy Strictness) Result {
	text, err := r.session.BodyText()
	if err != nil {
		return failed("read body text: %v", err)
	}
	name := spec.Name
	if r.suite != "" {
		name = r.suite + "-" + spec.Name
	}
	res, err := r.snapshots.Compare(name, text)
	if err != nil {
		return failed("%v", err)
	}
	switch {
	case res.Recorded:
		return passed("recorded snapshot %s", res.Path)
	case res.Matched:
		return passed("")
	}
	return missed(policy, fmt.Sprintf("page text drifted from %s (similarity %.2f, want %.2f)\n%s",
		res.Path, res.Similarity, r.snapshots.Tolerance, res.Diff))
}

func (r *Runner) describe(spec CaseSpec) string {
	if spec.Title != "" {
		return spec.Title
	}
	return spec.Path
}

func (r *Runner) finish(out Outcome) {
	fields := []zap.Field{
		zap.String("suite", out.Suite),
		zap.String("case", out.Case),
		zap.Stringer("status", out.Status),
		zap.Duration("duration", out.Duration),
	}
	if out.Reason != "" {
		fields = append(fields, zap.String("reason", out.Reason))
	}
	if len(out.Notes) > 0 {
		fields = append(fields, zap.Strings("notes", out.Notes))
	}
	r.log.Info("case finished", fields...)
	if r.observe != nil {
		r.observe(out)
	}
}

// caseRun walks one Outcome through the case state machine.
type caseRun struct {
	out Outcome
}

func (c *caseRun) advance(to State) {
	if !c.out.State.CanMove(to) {
		panic(fmt.Sprintf("case %s: illegal transition %s -> %s", c.out.Case, c.out.State, to))
	}
	c.out.State = to
}

func (c *caseRun) note(msg string) {
	c.out.Notes = append(c.out.Notes, strings.TrimSpace(msg))
}

func (c *caseRun) pass() {
	c.advance(StatePassed)
	c.out.Status = StatusPass
}

func (c *caseRun) skip(reason string) {
	c.advance(StateSkipped)
	c.out.Status = StatusSkip
	c.out.Reason = reason
}

// fail is allowed from any state so that a panic after a terminal state
// still ends up as a failure.
func (c *caseRun) fail(reason string) {
	c.out.State = StateFailed
	c.out.Status = StatusFail
	c.out.Reason = reason
}
