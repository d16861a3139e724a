package surface

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDisposed is returned by SetFormat after the surface has been disposed.
var ErrDisposed = errors.New("surface disposed")

// FormatNegotiationError reports a frame geometry the surface refuses to
// allocate.
type FormatNegotiationError struct {
	Width  uint32
	Height uint32
}

func (e *FormatNegotiationError) Error() string {
	return fmt.Sprintf("cannot allocate %dx%d frame buffer (max dimension %d)", e.Width, e.Height, maxDimension)
}

// FrameListener is invoked after every committed frame with the new
// generation number. Listeners run on the writer's goroutine, after the
// surface lock has been released, so they must hand heavy work elsewhere.
type FrameListener func(generation uint64)

// Surface owns a single FrameBuffer under a mutex and mediates between the
// one decoder that writes into it and any number of presentation consumers
// that take read snapshots of it.
//
// Write protocol (decoder side): BeginWrite returns the raw buffer with the
// lock held; the decoder fills it with one frame and calls EndWrite, which
// commits a new generation and releases the lock. EndWrite must only be
// called after a BeginWrite that returned a non-nil buffer.
//
// Read protocol (renderer side): Snapshot returns a guard that keeps the
// lock held until Release, so the buffer cannot be reallocated or freed
// while a copy out of it is in flight.
type Surface struct {
	mu         sync.Mutex
	buf        *FrameBuffer
	generation uint64
	disposed   bool

	listeners  map[int]FrameListener
	nextListen int
}

// New creates an empty surface. It holds no buffer until the decoder
// announces a format through SetFormat.
func New() *Surface {
	return &Surface{listeners: make(map[int]FrameListener)}
}

// SetFormat frees any previous buffer and allocates a new one for the given
// geometry, returning the row stride the decoder must write with. A zero
// width or height transitions the surface to the empty state (no buffer),
// which is not an error. Safe to call repeatedly, e.g. on every clip load.
func (s *Surface) SetFormat(width, height uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return 0, ErrDisposed
	}
	if width == 0 || height == 0 {
		s.buf = nil
		return 0, nil
	}
	if width > maxDimension || height > maxDimension {
		return 0, &FormatNegotiationError{Width: width, Height: height}
	}

	// The old buffer (if any) is dropped here; snapshot guards taken before
	// this point still reference it and remain valid until released because
	// they hold the same lock we are holding now.
	s.buf = newFrameBuffer(width, height)
	return s.buf.Stride, nil
}

// BeginWrite acquires the surface lock and returns the buffer for the
// decoder to fill. Returns nil (with the lock released) when the surface is
// empty or disposed; the caller must skip the frame and must not call
// EndWrite in that case.
func (s *Surface) BeginWrite() []byte {
	s.mu.Lock()
	if s.disposed || s.buf == nil {
		s.mu.Unlock()
		return nil
	}
	return s.buf.Data
}

// EndWrite commits the frame written after BeginWrite: it bumps the
// generation counter, releases the lock, and then notifies frame listeners.
// The lock is never held across the listener callbacks.
func (s *Surface) EndWrite() {
	s.generation++
	gen := s.generation
	var fns []FrameListener
	if len(s.listeners) > 0 {
		fns = make([]FrameListener, 0, len(s.listeners))
		for _, fn := range s.listeners {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(gen)
	}
}

// Snapshot returns a read guard over the current frame, or false when the
// surface holds no frame. The guard keeps the surface lock held, so the
// caller must copy what it needs and call Release promptly.
func (s *Surface) Snapshot() (*Snapshot, bool) {
	s.mu.Lock()
	if s.disposed || s.buf == nil {
		s.mu.Unlock()
		return nil, false
	}
	return &Snapshot{
		surf:       s,
		Data:       s.buf.Data,
		Width:      s.buf.Width,
		Height:     s.buf.Height,
		Stride:     s.buf.Stride,
		Generation: s.generation,
	}, true
}

// Subscribe registers a frame-ready listener and returns an id for
// Unsubscribe.
func (s *Surface) Subscribe(fn FrameListener) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListen
	s.nextListen++
	if s.listeners == nil {
		s.listeners = make(map[int]FrameListener)
	}
	s.listeners[id] = fn
	return id
}

// Unsubscribe removes a previously registered listener. Unknown ids are
// ignored.
func (s *Surface) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, id)
}

// Generation returns the current frame generation counter.
func (s *Surface) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Dispose frees the buffer and drops all listeners. It acquires the same
// lock used by the write path, so a decoder callback racing with disposal
// either completes against the old buffer or observes the surface as empty.
// Calling Dispose more than once is a no-op.
func (s *Surface) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.buf = nil
	s.listeners = nil
}

// Snapshot is an immutable view of the current frame. It holds the surface
// lock from creation until Release, which is what keeps Data valid while the
// consumer copies from it.
type Snapshot struct {
	surf       *Surface
	Data       []byte
	Width      uint32
	Height     uint32
	Stride     uint32
	Generation uint64

	released bool
}

// Release drops the guard and unlocks the surface. Data must not be touched
// afterwards. Releasing twice is a no-op.
func (sn *Snapshot) Release() {
	if sn.released {
		return
	}
	sn.released = true
	sn.surf.mu.Unlock()
}
