package preview

import (
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"media-dock/pkg/surface"
)

const (
	defaultFadeDuration = 250 * time.Millisecond
	maxFadeDuration     = 10 * time.Second
)

// fade is one channel's opacity animation: from -> target over duration,
// ease-out. A zero duration snaps to target.
type fade struct {
	from     float64
	target   float64
	start    time.Time
	duration time.Duration
}

// valueAt evaluates the fade with a cubic ease-out curve. The curve shape is
// deliberately fixed; only the duration is configurable.
func (f fade) valueAt(now time.Time) float64 {
	if f.duration <= 0 {
		return f.target
	}
	elapsed := now.Sub(f.start)
	if elapsed <= 0 {
		return f.from
	}
	if elapsed >= f.duration {
		return f.target
	}
	t := float64(elapsed) / float64(f.duration)
	inv := 1 - t
	eased := 1 - inv*inv*inv
	return f.from + (f.target-f.from)*eased
}

// Crossfade stacks two presentation controls and drives their opacity so
// that exactly one channel is visible at steady state and both only during
// the transition window. Both channels stay mounted throughout: the losing
// channel keeps rendering its last frame at decreasing opacity instead of
// blanking.
type Crossfade struct {
	mu sync.Mutex

	a *Control
	b *Control

	active ChannelIndex
	fades  [2]fade // index 0 = A, 1 = B

	fadeDuration time.Duration

	now func() time.Time // injectable clock
}

// NewCrossfade wraps two controls. Both start invisible with no active
// channel.
func NewCrossfade(a, b *Control) *Crossfade {
	a.SetOpacity(0)
	b.SetOpacity(0)
	return &Crossfade{
		a:            a,
		b:            b,
		active:       ChannelNone,
		fadeDuration: defaultFadeDuration,
		now:          time.Now,
	}
}

// Channel returns the control for a channel, or nil for ChannelNone.
func (x *Crossfade) Channel(idx ChannelIndex) *Control {
	switch idx {
	case ChannelA:
		return x.a
	case ChannelB:
		return x.b
	default:
		return nil
	}
}

// SetChannelSource rebinds a channel's video source. Independent of which
// channel is currently active.
func (x *Crossfade) SetChannelSource(idx ChannelIndex, src *surface.Surface) {
	if c := x.Channel(idx); c != nil {
		c.SetSource(src)
	}
}

// Active returns the logically active channel.
func (x *Crossfade) Active() ChannelIndex {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.active
}

// SetFadeDuration sets the duration used by the next transition, clamped to
// 0..10s. An in-flight transition keeps its original duration.
func (x *Crossfade) SetFadeDuration(d time.Duration) {
	if d < 0 {
		d = 0
	} else if d > maxFadeDuration {
		d = maxFadeDuration
	}
	x.mu.Lock()
	x.fadeDuration = d
	x.mu.Unlock()
}

// SetActive switches the visible channel, animating the newcomer in and the
// previous channel out. Setting the already-active channel is a no-op.
// Retargeting before a transition completes starts the new animation from
// each channel's instantaneous opacity, so there is never a visible jump.
func (x *Crossfade) SetActive(idx ChannelIndex) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if idx == x.active {
		return
	}
	now := x.now()
	for i, ch := range [2]ChannelIndex{ChannelA, ChannelB} {
		target := 0.0
		if ch == idx {
			target = 1.0
		}
		x.fades[i] = fade{
			from:     x.fades[i].valueAt(now),
			target:   target,
			start:    now,
			duration: x.fadeDuration,
		}
	}
	x.active = idx
}

// Update advances the animation and pushes the resulting opacities into the
// channel controls. Call once per frame from the render loop.
func (x *Crossfade) Update(now time.Time) {
	x.mu.Lock()
	oa := x.fades[0].valueAt(now)
	ob := x.fades[1].valueAt(now)
	x.mu.Unlock()

	x.a.SetOpacity(oa)
	x.b.SetOpacity(ob)
}

// OpacityAt reports a channel's animated opacity at the given instant
// without applying it.
func (x *Crossfade) OpacityAt(idx ChannelIndex, now time.Time) float64 {
	x.mu.Lock()
	defer x.mu.Unlock()

	switch idx {
	case ChannelA:
		return x.fades[0].valueAt(now)
	case ChannelB:
		return x.fades[1].valueAt(now)
	default:
		return 0
	}
}

// Transitioning reports whether a fade is still in flight at the given
// instant.
func (x *Crossfade) Transitioning(now time.Time) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, f := range x.fades {
		if f.duration > 0 && now.Sub(f.start) < f.duration {
			return true
		}
	}
	return false
}

// Draw renders both channels into the target rectangle, bottom channel
// first. During a transition both are visible; at steady state one of them
// has zero opacity and skips itself.
func (x *Crossfade) Draw(renderer *sdl.Renderer, target sdl.Rect) error {
	if err := x.a.Draw(renderer, target); err != nil {
		return err
	}
	return x.b.Draw(renderer, target)
}

// Dispose disposes both channel controls.
func (x *Crossfade) Dispose() {
	x.a.Dispose()
	x.b.Dispose()
}
