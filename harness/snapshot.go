package harness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// SnapshotStore keeps the visible text of pages under Dir, one file per case.
type SnapshotStore struct {
	Dir       string
	Tolerance float64
	Update    bool
}

func NewSnapshotStore(cfg *Config) *SnapshotStore {
	return &SnapshotStore{Dir: cfg.SnapshotDir, Tolerance: cfg.SnapshotTolerance, Update: cfg.UpdateSnapshots}
}

// SnapshotResult describes one comparison.
type SnapshotResult struct {
	Path       string
	Recorded   bool
	Matched    bool
	Similarity float64
	Diff       string
}

func (s *SnapshotStore) path(name string) string {
	return filepath.Join(s.Dir, name+".txt")
}

// Compare matches text against the stored snapshot for name. The snapshot is
// written instead when it does not exist yet or Update is set.
func (s *SnapshotStore) Compare(name, text string) (SnapshotResult, error) {
	actual := NormalizeText(text)
	res := SnapshotResult{Path: s.path(name)}

	expectedBytes, err := os.ReadFile(res.Path)
	if s.Update || errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return res, fmt.Errorf("create snapshot dir: %w", err)
		}
		if err := os.WriteFile(res.Path, []byte(actual), 0644); err != nil {
			return res, fmt.Errorf("write snapshot: %w", err)
		}
		res.Recorded, res.Matched, res.Similarity = true, true, 1
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read snapshot: %w", err)
	}

	expected := string(expectedBytes)
	res.Similarity = Similarity(expected, actual)
	res.Matched = res.Similarity >= s.Tolerance
	if !res.Matched {
		res.Diff = DriftDiff(res.Path, expected, actual)
	}
	return res, nil
}

// NormalizeText trims every line, collapses runs of blanks and drops empty
// lines so layout noise does not count as drift.
func NormalizeText(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Similarity is 1 minus the Levenshtein distance between a and b relative to
// the longer of the two, counted in runes.
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dmp := diffmatchpatch.New()
	distance := dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
	return 1 - float64(distance)/float64(longest)
}

// DriftDiff renders how the live page text moved away from the snapshot stored
// at path. It is empty when the two texts are the same.
func DriftDiff(path, stored, live string) string {
	if stored == live {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(path), stored, live)
	hunks := gotextdiff.ToUnified(path, "live page", stored, edits)
	return fmt.Sprint(hunks)
}
