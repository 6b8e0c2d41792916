package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Report collects the outcomes of one invocation.
type Report struct {
	RunID      string
	BaseURL    string
	Backend    Backend
	Strictness Strictness
	StartedAt  time.Time
	Outcomes   []Outcome
}

func NewReport(cfg *Config, strictness Strictness) *Report {
	return &Report{
		RunID:      uuid.Must(uuid.NewV7()).String(),
		BaseURL:    cfg.BaseURL,
		Backend:    cfg.Backend,
		Strictness: strictness,
		StartedAt:  time.Now().UTC(),
	}
}

func (r *Report) Add(outcomes ...Outcome) {
	r.Outcomes = append(r.Outcomes, outcomes...)
}

func (r *Report) Summary() Summary { return Summarize(r.Outcomes) }

// JSON renders the report as indented JSON.
func (r *Report) JSON() ([]byte, error) {
	summary := r.Summary()
	doc := ""
	var err error
	set := func(path string, value interface{}) {
		if err == nil {
			doc, err = sjson.Set(doc, path, value)
		}
	}
	set("run_id", r.RunID)
	set("base_url", r.BaseURL)
	set("backend", string(r.Backend))
	set("strictness", r.Strictness.String())
	set("started_at", r.StartedAt.Format(time.RFC3339))
	set("summary.total", summary.Total())
	set("summary.passed", summary.Passed)
	set("summary.failed", summary.Failed)
	set("summary.skipped", summary.Skipped)
	if err == nil {
		doc, err = sjson.SetRaw(doc, "cases", "[]")
	}

	for _, o := range r.Outcomes {
		if err != nil {
			break
		}
		var entry string
		entry, err = outcomeJSON(o)
		if err == nil {
			doc, err = sjson.SetRaw(doc, "cases.-1", entry)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	return pretty.Pretty([]byte(doc)), nil
}

func outcomeJSON(o Outcome) (string, error) {
	notes := o.Notes
	if notes == nil {
		notes = []string{}
	}
	entry := ""
	var err error
	for _, kv := range []struct {
		path  string
		value interface{}
	}{
		{"suite", o.Suite},
		{"name", o.Case},
		{"title", o.Title},
		{"status", o.Status.String()},
		{"state", o.State.String()},
		{"reason", o.Reason},
		{"notes", notes},
		{"duration_ms", o.Duration.Milliseconds()},
	} {
		if entry, err = sjson.Set(entry, kv.path, kv.value); err != nil {
			return "", err
		}
	}
	return entry, nil
}

// Write stores the report at path, creating parent directories.
func (r *Report) Write(path string) error {
	data, err := r.JSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadSummary pulls the summary counters out of a report document.
func ReadSummary(doc []byte) (Summary, error) {
	if !gjson.ValidBytes(doc) {
		return Summary{}, fmt.Errorf("report is not valid JSON")
	}
	s := gjson.GetBytes(doc, "summary")
	if !s.Exists() {
		return Summary{}, fmt.Errorf("report has no summary")
	}
	return Summary{
		Passed:  int(s.Get("passed").Int()),
		Failed:  int(s.Get("failed").Int()),
		Skipped: int(s.Get("skipped").Int()),
	}, nil
}

// QueryReport evaluates a JSONPath expression such as
// `$.cases[?(@.status=="fail")].name` against a report document.
func QueryReport(doc []byte, expr string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	result, err := jsonpath.Get(expr, v)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", expr, err)
	}
	return result, nil
}
