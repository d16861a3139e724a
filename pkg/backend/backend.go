// Package backend defines the boundary with native video decoders. Any
// decoder that can negotiate a BGRA frame format and write frames into a
// caller-supplied buffer through the four-callback contract below can drive
// a video surface; backends that only composite into their own fixed output
// surface cannot.
package backend

// VideoCallbacks is the registration contract a backend drives on its own
// decode thread, once per frame:
//
//	Format  - announces frame geometry; the receiver allocates and returns
//	          the row stride to write with (ok=false rejects the format)
//	Lock    - requests the destination buffer before writing a frame;
//	          a nil slice means no buffer is available and the frame must be
//	          skipped (Unlock and Display are then not called)
//	Unlock  - commits the written frame
//	Display - signals the committed frame is ready to present
//
// The backend may not retain the slice returned by Lock past the matching
// Unlock call.
type VideoCallbacks struct {
	Format  func(width, height uint32) (stride uint32, ok bool)
	Lock    func() []byte
	Unlock  func()
	Display func()
}

// Decoder is one native decoder instance. Implementations own their decode
// thread(s); lifecycle methods are safe for concurrent use.
type Decoder interface {
	// SetVideoCallbacks registers the frame delivery callbacks. Must be
	// called before Load.
	SetVideoCallbacks(cb VideoCallbacks)

	// Load binds a media source. It does not start frame production.
	Load(source string) error

	Play() error
	Pause() error

	// Stop halts frame production without tearing down the negotiated
	// format; the last delivered frame stays valid on the receiver side.
	Stop() error

	// Close releases all backend resources. Idempotent.
	Close() error
}

// RateSetter is implemented by backends that support a playback rate
// multiplier.
type RateSetter interface {
	SetPlaybackRate(rate float64)
}
