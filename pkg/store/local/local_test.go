package local

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestJSONRoundTrip(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	require.NoError(t, s.WriteJSON(ctx, path, sample{Name: "alpha", Count: 3}))

	var got sample
	require.NoError(t, s.ReadJSON(ctx, path, &got))
	assert.Equal(t, sample{Name: "alpha", Count: 3}, got)
}

func TestYAMLRoundTrip(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.yaml")

	require.NoError(t, s.WriteYAML(ctx, path, sample{Name: "beta", Count: 7}))

	var got sample
	require.NoError(t, s.ReadYAML(ctx, path, &got))
	assert.Equal(t, sample{Name: "beta", Count: 7}, got)
}

func TestReadJSONNotFound(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	var got sample
	err := s.ReadJSON(ctx, filepath.Join(t.TempDir(), "missing.json"), &got)
	require.Error(t, err)
	assert.True(t, fluidizeerrors.Is(err, fluidizeerrors.CodeNotFound))
}

func TestExists(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")

	ok, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.WriteJSON(ctx, path, sample{Name: "x"}))
	ok, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateAndRemoveDirectory(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, s.CreateDirectory(ctx, dir))
	ok, err := s.Exists(ctx, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveDirectory(ctx, dir))
	ok, err = s.Exists(ctx, dir)
	require.NoError(t, err)
	assert.False(t, ok)

	// Idempotent: removing an already-absent directory is not an error.
	require.NoError(t, s.RemoveDirectory(ctx, dir))
}

func TestCopyDirectory(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	src := t.TempDir()
	require.NoError(t, s.WriteJSON(ctx, filepath.Join(src, "sub", "file.json"), sample{Name: "copied"}))

	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, s.CopyDirectory(ctx, src, dst))

	var got sample
	require.NoError(t, s.ReadJSON(ctx, filepath.Join(dst, "sub", "file.json"), &got))
	assert.Equal(t, "copied", got.Name)
}

func TestListDirectories(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	base := t.TempDir()
	require.NoError(t, s.CreateDirectory(ctx, filepath.Join(base, "one")))
	require.NoError(t, s.CreateDirectory(ctx, filepath.Join(base, "two")))
	require.NoError(t, s.WriteJSON(ctx, filepath.Join(base, "file.json"), sample{}))

	dirs, err := s.ListDirectories(ctx, base)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, dirs)
}

func TestListDirectoriesMissingBase(t *testing.T) {
	s, _ := New(nil)
	ctx := context.Background()
	dirs, err := s.ListDirectories(ctx, filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, dirs)
}
