package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "My Courses\nPython 101\n", NormalizeText("  My   Courses \n\n\t\nPython\t101\n   "))
	assert.Equal(t, "", NormalizeText(" \n \n"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("quiz", "quiz"))
	assert.Equal(t, 0.75, Similarity("quiz", "quit"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, 0.5, Similarity("ab", "abcd"), 1e-9)
}

func TestDriftDiff(t *testing.T) {
	assert.Empty(t, DriftDiff("testdata/snapshots/user-quiz.txt", "a\nb\n", "a\nb\n"))

	diff := DriftDiff("testdata/snapshots/user-quiz.txt", "a\nb\n", "a\nc\n")
	assert.Contains(t, diff, "--- testdata/snapshots/user-quiz.txt")
	assert.Contains(t, diff, "+++ live page")
	assert.Contains(t, diff, "-b")
	assert.Contains(t, diff, "+c")
}

func TestSnapshotStoreCompare(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	store := &SnapshotStore{Dir: dir, Tolerance: 0.9}

	res, err := store.Compare("user-quiz", "Quiz\n  Question 1 of 10 \n")
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Equal(t, filepath.Join(dir, "user-quiz.txt"), res.Path)
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "Quiz\nQuestion 1 of 10\n", string(data))

	res, err = store.Compare("user-quiz", "Quiz\nQuestion 2 of 10\n")
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.True(t, res.Matched)
	assert.Empty(t, res.Diff)

	res, err = store.Compare("user-quiz", "Error\n")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Less(t, res.Similarity, 0.9)
	assert.Contains(t, res.Diff, "+Error")

	store.Update = true
	res, err = store.Compare("user-quiz", "Error\n")
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	data, err = os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "Error\n", string(data))
}
