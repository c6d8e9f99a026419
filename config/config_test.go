package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/gridpath/flags"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, s.Grid.Capacity)
	assert.Equal(t, 0.75, s.Grid.LoadFactor)
	assert.Equal(t, 4.0, s.Space.BucketSize)
	assert.Equal(t, 1e-4, s.Raster.Inset)
	assert.Equal(t, 100000, s.Search.MaxNodes)
	assert.True(t, s.Search.Diagonal)
	assert.Equal(t, ModeOverlap, s.Flags.Mode)

	pred, err := s.Predicate()
	require.NoError(t, err)
	assert.True(t, pred.Collides(1, 3))
	assert.False(t, pred.Collides(1, 2))

	opts := s.PathfinderOptions()
	assert.Equal(t, 1e-4, opts.Inset)
	assert.True(t, opts.Diagonal)
	assert.Equal(t, 4.0, s.SpaceOptions().BucketSize)
}

func TestFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gridpath.yaml", `
search:
  max_nodes: 500
  partial: true
flags:
  mode: matrix
  categories:
    - name: solid
      bit: 0
      collides_with: [walker]
    - name: walker
      bit: 1
`)
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, s.Search.MaxNodes)
	assert.True(t, s.Search.Partial)
	// untouched keys keep their defaults
	assert.True(t, s.Search.Diagonal)
	assert.Equal(t, 6, s.Grid.Capacity)

	pred, err := s.Predicate()
	require.NoError(t, err)
	m, err := s.Matrix()
	require.NoError(t, err)
	solid, err := m.Bits("solid")
	require.NoError(t, err)
	walker, err := m.Bits("walker")
	require.NoError(t, err)
	assert.True(t, pred.Collides(walker, solid))
	assert.False(t, pred.Collides(solid, solid))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GRIDPATH_SEARCH_MAX_NODES", "42")
	t.Setenv("GRIDPATH_SEARCH_CONSIDER_ACTORS", "false")
	t.Setenv("GRIDPATH_GRID_LOAD_FACTOR", "0.5")
	t.Setenv("GRIDPATH_FLAGS_MODE", "script")
	t.Setenv("GRIDPATH_FLAGS_SCRIPT", "result := (a & b & 1) != 0")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, s.Search.MaxNodes)
	assert.False(t, s.Search.ConsiderActors)
	assert.Equal(t, 0.5, s.Grid.LoadFactor)

	pred, err := s.Predicate()
	require.NoError(t, err)
	assert.IsType(t, &flags.Script{}, pred)
	assert.True(t, pred.Collides(3, 1))
	assert.False(t, pred.Collides(2, 2))
}

func TestScriptFileIsRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.tengo", `result := a == b && a != 0`)
	path := writeFile(t, dir, "gridpath.yaml", `
flags:
  mode: script
  script_file: rules.tengo
`)
	s, err := Load(path)
	require.NoError(t, err)
	pred, err := s.Predicate()
	require.NoError(t, err)
	assert.True(t, pred.Collides(4, 4))
	assert.False(t, pred.Collides(4, 5))
	assert.Equal(t, filepath.Join(dir, "rules.tengo"), s.ScriptPath())

	d, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, d.ScriptPath())
}

func TestInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"capacity", "grid: {capacity: 21}"},
		{"load_factor", "grid: {load_factor: 0}"},
		{"bucket_size", "space: {bucket_size: -1}"},
		{"inset", "raster: {inset: 0.5}"},
		{"longest", "search: {longest: -2}"},
		{"max_nodes", "search: {max_nodes: -1}"},
		{"mode", "flags: {mode: magic}"},
		{"matrix_without_categories", "flags: {mode: matrix}"},
		{"script_without_source", "flags: {mode: script}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "gridpath.yaml", c.body)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeFile(t, t.TempDir(), "bad.yaml", "grid: [")
	_, err = Load(path)
	assert.Error(t, err)

	t.Setenv("GRIDPATH_SEARCH_MAX_NODES", "lots")
	_, err = Load("")
	assert.Error(t, err)
}

func TestBadPredicate(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	s.Flags.Mode = ModeScript
	s.Flags.Script = "result := ("
	_, err = s.Predicate()
	assert.Error(t, err)

	s.Flags.Mode = ModeMatrix
	s.Flags.Categories = []flags.Category{{Name: "a", Bit: 40}}
	_, err = s.Predicate()
	assert.ErrorIs(t, err, flags.ErrBadCategory)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.yaml", "name: a\n")
	other := writeFile(t, dir, "other.yaml", "name: b\n")

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("name: c\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("name: d\n"), 0o644))

	select {
	case name := <-w.Events:
		assert.Equal(t, filepath.Clean(path), name)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for changed file")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	for range w.Events {
	}
}
