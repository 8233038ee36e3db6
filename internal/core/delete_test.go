package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresElevation(t *testing.T) {
	assert.True(t, RequiresElevation("/Applications/Foo.app"))
	assert.True(t, RequiresElevation("/Library/Input Methods/Bar.app"))
	assert.False(t, RequiresElevation("/Users/dev/Applications/Foo.app"))
	assert.False(t, RequiresElevation("/Users/dev/Downloads/tool.dmg"))
}

func TestDeleteRemovesTargets(t *testing.T) {
	dir := t.TempDir()
	victim := filepath.Join(dir, "node_modules")
	require.NoError(t, os.MkdirAll(filepath.Join(victim, "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(victim, "dep", "index.js"), []byte("x"), 0o644))

	report := Delete(context.Background(), nil, []Target{{Path: victim, Size: 1}}, false)

	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, int64(1), report.Freed)
	assert.Empty(t, report.Failures)
	_, err := os.Stat(victim)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteNonExistentIsSuccess(t *testing.T) {
	gone := filepath.Join(t.TempDir(), "already-gone")

	report := Delete(context.Background(), nil, []Target{{Path: gone, Size: 5}}, false)

	assert.Equal(t, 1, report.Deleted)
	assert.Empty(t, report.Failures)
}

func TestDeleteRefusesProtectedPaths(t *testing.T) {
	report := Delete(context.Background(), nil, []Target{
		{Path: "/System/Library/CoreServices/Finder.app", Size: 100},
	}, false)

	assert.Equal(t, 0, report.Deleted)
	assert.Equal(t, int64(0), report.Freed)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Err.Error(), "protected")
}

func TestDeleteDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	victim := filepath.Join(dir, "target")
	require.NoError(t, os.MkdirAll(victim, 0o755))

	report := Delete(context.Background(), nil, []Target{{Path: victim, Size: 7}}, true)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, int64(7), report.Freed)
	_, err := os.Stat(victim)
	assert.NoError(t, err)
}

func TestDeleteContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok")
	require.NoError(t, os.MkdirAll(ok, 0o755))

	report := Delete(context.Background(), nil, []Target{
		{Path: "/System/nope", Size: 1},
		{Path: ok, Size: 2},
	}, false)

	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, int64(2), report.Freed)
	assert.Len(t, report.Failures, 1)
}
