package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"
)

type recordingWidget struct {
	draws []sdl.Rect
}

func (w *recordingWidget) Draw(_ *sdl.Renderer, target sdl.Rect) error {
	w.draws = append(w.draws, target)
	return nil
}

func TestAttachUnknownSlotFails(t *testing.T) {
	r := NewRegistry()
	err := r.Attach(&recordingWidget{}, "preview")
	assert.Error(t, err)
}

func TestDrawRendersIntoSlotRect(t *testing.T) {
	r := NewRegistry()
	r.DefineSlot("preview", sdl.Rect{X: 10, Y: 20, W: 640, H: 360})
	w := &recordingWidget{}
	require.NoError(t, r.Attach(w, "preview"))

	require.NoError(t, r.Draw(nil))
	require.Len(t, w.draws, 1)
	assert.Equal(t, sdl.Rect{X: 10, Y: 20, W: 640, H: 360}, w.draws[0])
}

func TestZeroSizedSlotSuppressesPresentation(t *testing.T) {
	r := NewRegistry()
	r.DefineSlot("hidden", sdl.Rect{X: 0, Y: 0, W: 0, H: 100})
	w := &recordingWidget{}
	require.NoError(t, r.Attach(w, "hidden"), "zero-sized attach is a no-op, not an error")

	require.NoError(t, r.Draw(nil))
	assert.Empty(t, w.draws)

	// The slot growing later re-enables presentation.
	r.DefineSlot("hidden", sdl.Rect{X: 0, Y: 0, W: 100, H: 100})
	require.NoError(t, r.Draw(nil))
	assert.Len(t, w.draws, 1)
}

func TestDetachOnlyRemovesCurrentOccupant(t *testing.T) {
	r := NewRegistry()
	r.DefineSlot("preview", sdl.Rect{W: 10, H: 10})
	w1 := &recordingWidget{}
	w2 := &recordingWidget{}
	require.NoError(t, r.Attach(w1, "preview"))
	require.NoError(t, r.Attach(w2, "preview")) // replaces w1

	r.Detach(w1, "preview") // stale detach: no-op
	require.NoError(t, r.Draw(nil))
	assert.Len(t, w2.draws, 1)

	r.Detach(w2, "preview")
	require.NoError(t, r.Draw(nil))
	assert.Len(t, w2.draws, 1)
}
