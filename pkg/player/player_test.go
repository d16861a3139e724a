package player

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-dock/pkg/backend"
)

// fakeDecoder drives the four-callback contract synchronously from the test
// goroutine, standing in for a native backend's decode thread.
type fakeDecoder struct {
	cb       backend.VideoCallbacks
	loadErr  error
	loaded   []string
	playing  bool
	stops    int
	closes   atomic.Int32
	width    uint32
	height   uint32
	rate     float64
}

func (f *fakeDecoder) SetVideoCallbacks(cb backend.VideoCallbacks) { f.cb = cb }

func (f *fakeDecoder) Load(source string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append(f.loaded, source)
	if _, ok := f.cb.Format(f.width, f.height); !ok {
		return errors.New("format rejected")
	}
	return nil
}

func (f *fakeDecoder) Play() error  { f.playing = true; return nil }
func (f *fakeDecoder) Pause() error { f.playing = false; return nil }
func (f *fakeDecoder) Stop() error  { f.playing = false; f.stops++; return nil }
func (f *fakeDecoder) Close() error { f.closes.Add(1); return nil }

func (f *fakeDecoder) SetPlaybackRate(rate float64) { f.rate = rate }

// emitFrame pushes one frame through the callbacks the way a backend would.
func (f *fakeDecoder) emitFrame(fill byte) bool {
	buf := f.cb.Lock()
	if buf == nil {
		return false
	}
	for i := range buf {
		buf[i] = fill
	}
	f.cb.Unlock()
	f.cb.Display()
	return true
}

func newTestPlayer(w, h uint32) (*Player, *fakeDecoder) {
	dec := &fakeDecoder{width: w, height: h}
	return New(dec), dec
}

func TestLoadEmptyPathFails(t *testing.T) {
	p, dec := newTestPlayer(320, 240)
	err := p.Load("")
	var loadErr *MediaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Empty(t, dec.loaded)
}

func TestLoadBackendRejectionLeavesPriorStateIntact(t *testing.T) {
	p, dec := newTestPlayer(320, 240)
	require.NoError(t, p.Load("clips/a.mp4"))
	require.True(t, dec.emitFrame(0x42))
	genBefore := p.Surface().Generation()

	dec.loadErr = errors.New("container not supported")
	err := p.Load("clips/b.mp4")
	var loadErr *MediaLoadError
	require.ErrorAs(t, err, &loadErr)

	// Prior media and its last frame are untouched.
	assert.Equal(t, "clips/a.mp4", p.Source())
	assert.Equal(t, genBefore, p.Surface().Generation())
	snap, ok := p.Surface().Snapshot()
	require.True(t, ok)
	assert.Equal(t, byte(0x42), snap.Data[0])
	snap.Release()
}

func TestFramesFlowIntoSurface(t *testing.T) {
	p, dec := newTestPlayer(64, 32)
	require.NoError(t, p.Load("clips/a.mp4"))
	require.NoError(t, p.Play())

	for i := 0; i < 5; i++ {
		require.True(t, dec.emitFrame(byte(i)))
	}

	assert.Equal(t, uint64(5), p.Surface().Generation())
	assert.Equal(t, uint64(5), p.FramesDisplayed())

	snap, ok := p.Surface().Snapshot()
	require.True(t, ok)
	assert.Equal(t, 64*4*32, len(snap.Data))
	assert.Equal(t, byte(4), snap.Data[0])
	snap.Release()
}

func TestStopKeepsLastFrame(t *testing.T) {
	p, dec := newTestPlayer(16, 16)
	require.NoError(t, p.Load("clips/a.mp4"))
	require.True(t, dec.emitFrame(0xAB))

	require.NoError(t, p.Stop())

	// The surface still holds the last frame as a static image.
	snap, ok := p.Surface().Snapshot()
	require.True(t, ok)
	assert.Equal(t, byte(0xAB), snap.Data[0])
	snap.Release()
}

func TestDisposeIdempotentConcurrent(t *testing.T) {
	p, dec := newTestPlayer(16, 16)
	require.NoError(t, p.Load("clips/a.mp4"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Dispose()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), dec.closes.Load(), "backend must be closed exactly once")
	_, ok := p.Surface().Snapshot()
	assert.False(t, ok)
}

func TestCallbackAfterDisposeIsHarmless(t *testing.T) {
	p, dec := newTestPlayer(16, 16)
	require.NoError(t, p.Load("clips/a.mp4"))
	p.Dispose()

	// A straggling decode callback after teardown just skips the frame.
	assert.False(t, dec.emitFrame(0x01))
}

func TestAbsurdFormatRejectedWithoutPanic(t *testing.T) {
	p, dec := newTestPlayer(1<<20, 1<<20)
	err := p.Load("clips/a.mp4")
	var loadErr *MediaLoadError
	require.ErrorAs(t, err, &loadErr)
	_ = dec
}

func TestPlaybackRateForwarding(t *testing.T) {
	p, dec := newTestPlayer(16, 16)
	p.SetPlaybackRate(1.5)
	assert.Equal(t, 1.5, dec.rate)
	p.SetPlaybackRate(0) // ignored
	assert.Equal(t, 1.5, dec.rate)
}
