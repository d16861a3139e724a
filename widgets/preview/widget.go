// Package preview contains the renderable video preview widgets: the
// per-channel presentation surface and the two-channel crossfade controller
// stacked above a pair of them.
package preview

import (
	"image"
	"log"
	"sync"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"media-dock/pkg/compose"
	"media-dock/pkg/performance"
	"media-dock/pkg/render"
	"media-dock/pkg/surface"
	"media-dock/pkg/video"
)

// Control presents one video surface. It keeps a private copy of the latest
// frame so the source surface can be reformatted or disposed at any time
// without the control holding a dangling view: the only moment it touches
// source memory is inside a snapshot guard on the render thread.
//
// Frame-ready signals arrive on whatever thread the decoder uses; the
// control forwards them to the render dispatcher keyed by itself, so a slow
// render loop coalesces to the latest frame instead of queueing.
type Control struct {
	dispatcher *render.Dispatcher
	pacer      *video.CopyPacer
	monitor    *performance.Monitor

	mu     sync.Mutex
	source *surface.Surface
	subID  int

	// Private renderable copy of the last presented frame.
	pixels []byte
	width  int
	height int
	stride int

	lastGen uint64
	dirty   bool

	stretch compose.StretchMode
	opacity float64
	enabled bool

	texture *sdl.Texture
	texW    int32
	texH    int32
}

// NewControl creates a control that marshals frame copies through the given
// dispatcher. It starts fully opaque, enabled, with Uniform stretch and no
// source.
func NewControl(dispatcher *render.Dispatcher) *Control {
	return &Control{
		dispatcher: dispatcher,
		pacer:      video.NewCopyPacer(),
		monitor:    performance.NewMonitor(120),
		stretch:    compose.Uniform,
		opacity:    1.0,
		enabled:    true,
	}
}

// SetSource rebinds the control to a surface (or nil for none). The old
// subscription is always removed first, so rebinding never leaves a
// dangling listener. A newly bound surface that already holds a frame is
// picked up on the next drain.
func (c *Control) SetSource(src *surface.Surface) {
	c.mu.Lock()
	if c.source != nil {
		c.source.Unsubscribe(c.subID)
	}
	c.source = src
	// Generations are per-surface; a fresh source starts its own sequence.
	c.lastGen = 0
	if src != nil {
		c.subID = src.Subscribe(c.onFrameReady)
	}
	c.mu.Unlock()

	if src != nil {
		c.dispatcher.Post(c, c.syncFromSource)
	}
}

// onFrameReady runs on the decoder's thread. It must stay cheap: consult the
// pacer, then post (or coalesce) a copy task for the render thread.
func (c *Control) onFrameReady(uint64) {
	if !c.pacer.ShouldCopy(c.monitor.GetReport()) {
		c.monitor.RecordSkip()
		return
	}
	c.dispatcher.Post(c, c.syncFromSource)
}

// syncFromSource runs on the render thread: snapshot the source, resize the
// private buffer if the geometry changed, and copy the frame.
func (c *Control) syncFromSource() {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		return
	}
	snap, ok := c.source.Snapshot()
	if !ok {
		return
	}

	// Never regress: a coalesced update racing a stale post could otherwise
	// present an older frame than the one already shown.
	if snap.Generation <= c.lastGen {
		snap.Release()
		return
	}

	w, h := int(snap.Width), int(snap.Height)
	if w != c.width || h != c.height {
		// Resize exactly when the observed geometry differs; steady
		// playback never reallocates.
		c.pixels = make([]byte, len(snap.Data))
		c.width = w
		c.height = h
	}
	c.stride = int(snap.Stride)

	// A momentary source/destination length mismatch during a format change
	// is expected; copying min(len) bounds both sides and self-corrects on
	// the next frame.
	n := len(snap.Data)
	if len(c.pixels) < n {
		n = len(c.pixels)
	}
	copy(c.pixels[:n], snap.Data[:n])
	c.lastGen = snap.Generation
	snap.Release()

	c.dirty = true
	c.monitor.RecordCopy(time.Since(start))
}

// SetStretchMode changes how the frame maps into the target rectangle.
func (c *Control) SetStretchMode(mode compose.StretchMode) {
	c.mu.Lock()
	c.stretch = mode
	c.mu.Unlock()
}

// SetOpacity sets the draw opacity, clamped to 0..1.
func (c *Control) SetOpacity(opacity float64) {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	c.mu.Lock()
	c.opacity = opacity
	c.mu.Unlock()
}

// Opacity returns the current draw opacity.
func (c *Control) Opacity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opacity
}

// SetEnabled toggles video presentation for this control; a disabled
// control draws nothing but keeps receiving frames.
func (c *Control) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// PresentedGeneration reports the generation of the last frame copied into
// the private buffer.
func (c *Control) PresentedGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastGen
}

// FrameSize returns the geometry of the private buffer.
func (c *Control) FrameSize() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Monitor exposes the control's timing monitor.
func (c *Control) Monitor() *performance.Monitor { return c.monitor }

// Draw renders the private frame copy into target on the render thread,
// honoring stretch mode and opacity. Degenerate targets, missing frames,
// disabled video, and zero opacity all draw nothing.
func (c *Control) Draw(renderer *sdl.Renderer, target sdl.Rect) error {
	start := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.opacity <= 0 || c.width == 0 || c.height == 0 {
		return nil
	}
	if target.W <= 0 || target.H <= 0 {
		return nil
	}

	if err := c.ensureTextureLocked(renderer); err != nil {
		return err
	}
	if c.dirty {
		if err := c.uploadLocked(); err != nil {
			return err
		}
		c.dirty = false
	}

	x, y, w, h, ok := compose.DestRect(c.width, c.height, int(target.W), int(target.H), c.stretch)
	if !ok {
		return nil
	}
	dst := sdl.Rect{X: target.X + int32(x), Y: target.Y + int32(y), W: int32(w), H: int32(h)}

	c.texture.SetBlendMode(sdl.BLENDMODE_BLEND)
	c.texture.SetAlphaMod(uint8(c.opacity*255 + 0.5))

	// UniformToFill maps past the target edges; clip so the crop stays
	// inside the slot.
	renderer.SetClipRect(&target)
	err := renderer.Copy(c.texture, nil, &dst)
	renderer.SetClipRect(nil)

	c.monitor.RecordDraw(time.Since(start))
	return err
}

// ensureTextureLocked creates or recreates the streaming texture to match
// the private buffer geometry. Caller holds c.mu.
func (c *Control) ensureTextureLocked(renderer *sdl.Renderer) error {
	w, h := int32(c.width), int32(c.height)
	if c.texture != nil && c.texW == w && c.texH == h {
		return nil
	}
	if c.texture != nil {
		c.texture.Destroy()
		c.texture = nil
	}

	tex, err := renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ARGB8888), sdl.TEXTUREACCESS_STREAMING, w, h)
	if err != nil {
		return err
	}
	c.texture = tex
	c.texW = w
	c.texH = h
	c.dirty = true
	return nil
}

// uploadLocked copies the private buffer into the streaming texture.
// Caller holds c.mu.
func (c *Control) uploadLocked() error {
	texPixels, _, err := c.texture.Lock(nil)
	if err != nil {
		return err
	}
	defer c.texture.Unlock()

	n := len(c.pixels)
	if len(texPixels) < n {
		n = len(texPixels)
	}
	copy(texPixels[:n], c.pixels[:n])
	return nil
}

// RenderSoftware composites the private frame copy into a Go image, for
// hosts without an SDL renderer and for thumbnail capture.
func (c *Control) RenderSoftware(dst *image.RGBA, target image.Rectangle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled || c.opacity <= 0 || c.width == 0 || c.height == 0 {
		return
	}
	compose.Composite(dst, target, c.pixels, c.width, c.height, c.stride, c.stretch, c.opacity)
}

// Thumbnail renders the current frame into a fresh image of the given size
// under the control's stretch mode, at full opacity. Returns nil when no
// frame has been presented yet.
func (c *Control) Thumbnail(w, h int) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.width == 0 || c.height == 0 || w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	compose.Composite(img, img.Bounds(), c.pixels, c.width, c.height, c.stride, c.stretch, 1.0)
	return img
}

// Dispose unsubscribes from the source and destroys the texture. The
// private pixel buffer is dropped; a disposed control draws nothing.
func (c *Control) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source != nil {
		c.source.Unsubscribe(c.subID)
		c.source = nil
	}
	if c.texture != nil {
		if err := c.texture.Destroy(); err != nil {
			log.Printf("Control.Dispose: texture destroy failed: %v", err)
		}
		c.texture = nil
	}
	c.pixels = nil
	c.width = 0
	c.height = 0
	c.enabled = false
}
