package mediafs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableClipsFiltersNonClips(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	require.NoError(t, os.MkdirAll(CacheDir, os.ModePerm))
	for _, name := range []string{"a.mp4", "b.webm", "clip-123.part", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(CacheDir, name), []byte("x"), 0o644))
	}

	clips, err := AvailableClips()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(CacheDir, "a.mp4"),
		filepath.Join(CacheDir, "b.webm"),
	}, clips)
}

func TestAvailableClipsMissingDir(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	clips, err := AvailableClips()
	require.NoError(t, err)
	assert.Empty(t, clips)
}

func TestClearCacheRemovesEverything(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	require.NoError(t, os.MkdirAll(CacheDir, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(CacheDir, "a.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(CacheDir, "clip-1.part"), []byte("x"), 0o644))

	require.NoError(t, ClearCache())

	clips, err := AvailableClips()
	require.NoError(t, err)
	assert.Empty(t, clips)
}
