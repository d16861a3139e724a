// Package theme loads the skin configuration that positions preview slots
// and tunes the crossfade. Missing or malformed files fall back to a sane
// built-in theme so the application always comes up.
package theme

import (
	"log"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"media-dock/pkg/compose"
)

// SlotConfig positions one named presentation slot. A zero width or height
// hides whatever is attached there.
type SlotConfig struct {
	Name string `yaml:"name"`
	X    int32  `yaml:"x"`
	Y    int32  `yaml:"y"`
	W    int32  `yaml:"w"`
	H    int32  `yaml:"h"`
}

// PreviewConfig tunes the video preview channels.
type PreviewConfig struct {
	Stretch         string `yaml:"stretch"`
	FadeDurationMs  int    `yaml:"fadeDurationMs"`
	ChannelAEnabled *bool  `yaml:"channelAEnabled"`
	ChannelBEnabled *bool  `yaml:"channelBEnabled"`
}

// Theme is the full skin configuration.
type Theme struct {
	Slots   []SlotConfig  `yaml:"slots"`
	Preview PreviewConfig `yaml:"preview"`
}

const maxFadeMs = 10000

var defaultTheme = Theme{
	Slots: []SlotConfig{
		{Name: "preview", X: 960, Y: 120, W: 800, H: 450},
	},
	Preview: PreviewConfig{
		Stretch:        "uniform",
		FadeDurationMs: 250,
	},
}

// Load reads a theme file; any error yields the built-in default.
func Load(path string) Theme {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("theme.Load: %s not readable (%v), using defaults", path, err)
		return defaultTheme
	}

	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		log.Printf("theme.Load: failed to parse %s (%v), using defaults", path, err)
		return defaultTheme
	}
	if len(t.Slots) == 0 {
		t.Slots = defaultTheme.Slots
	}
	if t.Preview.Stretch == "" {
		t.Preview.Stretch = defaultTheme.Preview.Stretch
	}
	if t.Preview.FadeDurationMs == 0 {
		t.Preview.FadeDurationMs = defaultTheme.Preview.FadeDurationMs
	}
	return t
}

// FadeDuration returns the configured crossfade duration clamped to 0..10s.
func (t Theme) FadeDuration() time.Duration {
	ms := t.Preview.FadeDurationMs
	if ms < 0 {
		ms = 0
	} else if ms > maxFadeMs {
		ms = maxFadeMs
	}
	return time.Duration(ms) * time.Millisecond
}

// StretchMode returns the configured stretch mode.
func (t Theme) StretchMode() compose.StretchMode {
	return compose.ParseStretchMode(t.Preview.Stretch)
}

// ChannelEnabled reports whether video is enabled for a channel; channels
// default to enabled when the theme does not say.
func (t Theme) ChannelEnabled(channel string) bool {
	var v *bool
	switch channel {
	case "a", "A":
		v = t.Preview.ChannelAEnabled
	case "b", "B":
		v = t.Preview.ChannelBEnabled
	}
	if v == nil {
		return true
	}
	return *v
}
