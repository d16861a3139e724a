package theme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-dock/pkg/compose"
)

func writeTheme(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesSlotsAndPreview(t *testing.T) {
	path := writeTheme(t, `
slots:
  - name: preview
    x: 100
    y: 50
    w: 640
    h: 360
  - name: hero
    x: 0
    y: 0
    w: 0
    h: 0
preview:
  stretch: uniformToFill
  fadeDurationMs: 400
  channelBEnabled: false
`)
	th := Load(path)
	require.Len(t, th.Slots, 2)
	assert.Equal(t, "preview", th.Slots[0].Name)
	assert.Equal(t, int32(640), th.Slots[0].W)
	assert.Equal(t, compose.UniformToFill, th.StretchMode())
	assert.Equal(t, 400*time.Millisecond, th.FadeDuration())
	assert.True(t, th.ChannelEnabled("A"))
	assert.False(t, th.ChannelEnabled("B"))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	th := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NotEmpty(t, th.Slots)
	assert.Equal(t, compose.Uniform, th.StretchMode())
	assert.Equal(t, 250*time.Millisecond, th.FadeDuration())
}

func TestLoadMalformedFileUsesDefaults(t *testing.T) {
	path := writeTheme(t, "slots: [not: valid: yaml")
	th := Load(path)
	assert.Equal(t, 250*time.Millisecond, th.FadeDuration())
}

func TestFadeDurationClamped(t *testing.T) {
	th := Theme{Preview: PreviewConfig{FadeDurationMs: 60000}}
	assert.Equal(t, 10*time.Second, th.FadeDuration())

	th = Theme{Preview: PreviewConfig{FadeDurationMs: -5}}
	assert.Equal(t, time.Duration(0), th.FadeDuration())
}
