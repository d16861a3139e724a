package settings

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chtmp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	chtmp(t)

	s := Load()
	assert.Equal(t, 1.0, s.PlaybackSpeed)
	assert.Equal(t, 250, s.FadeDurationMs)
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	chtmp(t)
	require.NoError(t, os.WriteFile(filename, []byte("{not json"), 0o644))

	s := Load()
	assert.Equal(t, defaultSettings, s)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	chtmp(t)

	enabled := false
	in := Settings{PlaybackSpeed: 1.5, FadeDurationMs: 400, VideoEnabled: &enabled}
	require.NoError(t, Save(in))

	out := Load()
	assert.Equal(t, 1.5, out.PlaybackSpeed)
	assert.Equal(t, 400, out.FadeDurationMs)
	require.NotNil(t, out.VideoEnabled)
	assert.False(t, *out.VideoEnabled)
}

func TestLoadFillsZeroValuesWithDefaults(t *testing.T) {
	chtmp(t)
	require.NoError(t, os.WriteFile(filename, []byte(`{"fadeDurationMs": 100}`), 0o644))

	s := Load()
	assert.Equal(t, 1.0, s.PlaybackSpeed)
	assert.Equal(t, 100, s.FadeDurationMs)
}
