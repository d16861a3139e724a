package preview

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-dock/pkg/render"
	"media-dock/pkg/surface"
)

// writeFrame pushes one frame of the given fill byte through a surface.
func writeFrame(t *testing.T, s *surface.Surface, fill byte) {
	t.Helper()
	buf := s.BeginWrite()
	require.NotNil(t, buf)
	for i := range buf {
		buf[i] = fill
	}
	s.EndWrite()
}

func TestControlCopiesLatestFrameOnDrain(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(32, 16)
	require.NoError(t, err)

	c.SetSource(s)
	writeFrame(t, s, 0x11)
	writeFrame(t, s, 0x22)

	// Two frames arrived before the render thread ran once; the copy task
	// coalesced and only the latest is applied.
	d.Drain()
	assert.Equal(t, uint64(2), c.PresentedGeneration())

	w, h := c.FrameSize()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)
	assert.Equal(t, byte(0x22), c.pixels[0])
}

func TestControlNeverPresentsOlderGeneration(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(8, 8)
	require.NoError(t, err)
	c.SetSource(s)

	writeFrame(t, s, 0x01)
	d.Drain()
	require.Equal(t, uint64(1), c.PresentedGeneration())

	// A stale post (same generation still on the surface) must not regress
	// or re-copy.
	c.syncFromSource()
	assert.Equal(t, uint64(1), c.PresentedGeneration())

	writeFrame(t, s, 0x02)
	d.Drain()
	assert.Equal(t, uint64(2), c.PresentedGeneration())
}

func TestControlResizesOnlyOnGeometryChange(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(16, 16)
	require.NoError(t, err)
	c.SetSource(s)

	writeFrame(t, s, 0x01)
	d.Drain()
	firstBuf := &c.pixels[0]

	// Same geometry across many frames: the private buffer is reused.
	for i := 0; i < 10; i++ {
		writeFrame(t, s, byte(i))
		d.Drain()
	}
	assert.Same(t, firstBuf, &c.pixels[0], "steady playback must not reallocate")

	// Geometry change: buffer is replaced.
	_, err = s.SetFormat(32, 32)
	require.NoError(t, err)
	writeFrame(t, s, 0xFF)
	d.Drain()
	assert.Equal(t, 32*4*32, len(c.pixels))
}

func TestControlCopyIsBoundedByBothBuffers(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(16, 16)
	require.NoError(t, err)
	c.SetSource(s)
	writeFrame(t, s, 0x01)
	d.Drain()

	// Simulate the transient mismatch a format change can produce: the
	// private buffer is shorter than the source while geometry still
	// matches. The copy must clamp to min(src, dst) and not overrun.
	c.mu.Lock()
	c.pixels = make([]byte, 16) // far shorter than 16*4*16
	c.mu.Unlock()

	writeFrame(t, s, 0xEE)
	d.Drain()

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, 16, len(c.pixels))
	for i := range c.pixels {
		assert.Equal(t, byte(0xEE), c.pixels[i])
	}
}

func TestControlRebindDropsOldSubscription(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s1 := surface.New()
	_, err := s1.SetFormat(8, 8)
	require.NoError(t, err)
	s2 := surface.New()
	_, err = s2.SetFormat(4, 4)
	require.NoError(t, err)

	c.SetSource(s1)
	c.SetSource(s2)
	d.Drain()

	// Frames on the old surface no longer reach the control.
	writeFrame(t, s1, 0x10)
	d.Drain()
	assert.Equal(t, uint64(0), c.PresentedGeneration())

	writeFrame(t, s2, 0x20)
	d.Drain()
	assert.Equal(t, uint64(1), c.PresentedGeneration())
	w, h := c.FrameSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}

func TestControlSurvivesSourceDisposal(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(10, 10)
	require.NoError(t, err)
	c.SetSource(s)
	writeFrame(t, s, 0x7F)
	d.Drain()

	s.Dispose()

	// The control keeps rendering its own last private copy.
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c.RenderSoftware(img, img.Bounds())
	_, _, _, a := img.At(5, 5).RGBA()
	assert.NotZero(t, a)
}

func TestControlRenderSoftwareRespectsEnabledAndOpacity(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(10, 10)
	require.NoError(t, err)
	c.SetSource(s)
	writeFrame(t, s, 0xFF)
	d.Drain()

	c.SetOpacity(0)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c.RenderSoftware(img, img.Bounds())
	_, _, _, a := img.At(5, 5).RGBA()
	assert.Zero(t, a, "zero opacity draws nothing")

	c.SetOpacity(1)
	c.SetEnabled(false)
	c.RenderSoftware(img, img.Bounds())
	_, _, _, a = img.At(5, 5).RGBA()
	assert.Zero(t, a, "disabled video draws nothing")
}

func TestControlThumbnail(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)

	assert.Nil(t, c.Thumbnail(64, 36), "no frame yet")

	s := surface.New()
	_, err := s.SetFormat(1920, 1080)
	require.NoError(t, err)
	c.SetSource(s)
	writeFrame(t, s, 0xFF)
	d.Drain()

	img := c.Thumbnail(64, 36)
	require.NotNil(t, img)
	assert.Equal(t, 64, img.Bounds().Dx())
	_, _, _, a := img.At(32, 18).RGBA()
	assert.NotZero(t, a)
}

func TestControlDisposeUnsubscribes(t *testing.T) {
	d := render.NewDispatcher()
	c := NewControl(d)
	s := surface.New()
	_, err := s.SetFormat(8, 8)
	require.NoError(t, err)
	c.SetSource(s)
	c.Dispose()

	writeFrame(t, s, 0x01)
	assert.Equal(t, 0, d.Len(), "disposed control must not schedule copies")
}
