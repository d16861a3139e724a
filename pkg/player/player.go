// Package player binds one native decoder instance to one video surface,
// translating the backend's per-frame callbacks into surface writes.
package player

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"media-dock/pkg/backend"
	"media-dock/pkg/surface"
)

// Player owns a backend decoder and the surface it feeds. The decoder's
// callbacks arrive on backend-owned threads; everything they touch goes
// through the surface's own lock, so the player never crosses them with its
// own mutex.
type Player struct {
	dec  backend.Decoder
	surf *surface.Surface

	mu     sync.Mutex
	source string
	loaded bool

	disposed    atomic.Bool
	disposeOnce sync.Once

	framesShown atomic.Uint64
}

// New wires a decoder to a fresh surface. The decoder must not have
// callbacks registered already.
func New(dec backend.Decoder) *Player {
	p := &Player{
		dec:  dec,
		surf: surface.New(),
	}
	dec.SetVideoCallbacks(backend.VideoCallbacks{
		Format:  p.onFormat,
		Lock:    p.onLock,
		Unlock:  p.onUnlock,
		Display: p.onDisplay,
	})
	return p
}

// Surface returns the surface this player writes decoded frames into. It
// stays valid (holding the last frame) across Stop and across failed loads,
// until Dispose.
func (p *Player) Surface() *surface.Surface { return p.surf }

// Load binds a new media source. Frame production starts with Play, not
// here. On failure the previously loaded media and the surface contents are
// left in their last state.
func (p *Player) Load(source string) error {
	if source == "" {
		return &MediaLoadError{Err: errors.New("empty source path")}
	}
	if p.disposed.Load() {
		return &MediaLoadError{Source: source, Err: errors.New("player disposed")}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.dec.Load(source); err != nil {
		return &MediaLoadError{Source: source, Err: err}
	}
	p.source = source
	p.loaded = true
	return nil
}

// Play starts or resumes frame production.
func (p *Player) Play() error {
	if p.disposed.Load() {
		return nil
	}
	if err := p.dec.Play(); err != nil {
		return &BackendFault{Op: "play", Err: err}
	}
	return nil
}

// Pause suspends frame production, keeping the last frame on the surface.
func (p *Player) Pause() error {
	if p.disposed.Load() {
		return nil
	}
	if err := p.dec.Pause(); err != nil {
		return &BackendFault{Op: "pause", Err: err}
	}
	return nil
}

// Stop halts playback. The surface is not deallocated: it keeps the last
// frame so a stopped preview renders as a static image until the next load
// or disposal.
func (p *Player) Stop() error {
	if p.disposed.Load() {
		return nil
	}
	if err := p.dec.Stop(); err != nil {
		return &BackendFault{Op: "stop", Err: err}
	}
	return nil
}

// SetPlaybackRate forwards the rate multiplier when the backend supports
// one; otherwise it is ignored.
func (p *Player) SetPlaybackRate(rate float64) {
	if rate <= 0 || p.disposed.Load() {
		return
	}
	if rs, ok := p.dec.(backend.RateSetter); ok {
		rs.SetPlaybackRate(rate)
	}
}

// Source returns the currently bound source path, or "" when nothing is
// loaded.
func (p *Player) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// FramesDisplayed reports how many frames the backend has marked
// display-ready since creation.
func (p *Player) FramesDisplayed() uint64 { return p.framesShown.Load() }

// Dispose stops playback, releases the backend, and disposes the owned
// surface exactly once. Safe to call repeatedly and concurrently, including
// while a decoder callback is in flight: the surface's lock makes the
// callback either complete against the old buffer or see the surface empty.
func (p *Player) Dispose() {
	p.disposeOnce.Do(func() {
		p.disposed.Store(true)
		if err := p.dec.Stop(); err != nil {
			log.Printf("Player.Dispose: backend stop failed: %v", err)
		}
		if err := p.dec.Close(); err != nil {
			log.Printf("Player.Dispose: backend close failed: %v", err)
		}
		p.surf.Dispose()
	})
}

// ---- backend callbacks (run on backend-owned threads) ----
//
// None of these may panic or propagate errors: the threads they run on
// cannot be unwound by this process. Anything unexpected is logged and
// swallowed.

func (p *Player) onFormat(width, height uint32) (uint32, bool) {
	stride, err := p.surf.SetFormat(width, height)
	if err != nil {
		log.Printf("Player: format %dx%d rejected: %v", width, height, err)
		return 0, false
	}
	if stride == 0 {
		// Zero-sized format puts the surface in its empty state; report it
		// as an accepted no-op so the backend simply produces no frames.
		return 0, true
	}
	return stride, true
}

func (p *Player) onLock() []byte {
	return p.surf.BeginWrite()
}

func (p *Player) onUnlock() {
	p.surf.EndWrite()
}

func (p *Player) onDisplay() {
	if p.framesShown.Add(1) == 1 {
		p.mu.Lock()
		src := p.source
		p.mu.Unlock()
		log.Printf("Player: first frame ready | source=%s", src)
	}
}
