package surface

// bytesPerPixel is fixed: every buffer in the pipeline is 32-bit BGRA.
const bytesPerPixel = 4

// maxDimension caps negotiated frame geometry. A decoder proposing anything
// beyond 8K in either direction is treated as misbehaving rather than
// allocating gigabytes on its behalf.
const maxDimension = 8192

// FrameBuffer is an owned block of raw BGRA pixel memory together with its
// declared geometry. It has no behavior beyond storage; all synchronization
// lives in Surface.
type FrameBuffer struct {
	Width  uint32
	Height uint32
	Stride uint32 // bytes per row, always Width*4
	Data   []byte // len(Data) == Stride*Height
}

func newFrameBuffer(width, height uint32) *FrameBuffer {
	stride := width * bytesPerPixel
	return &FrameBuffer{
		Width:  width,
		Height: height,
		Stride: stride,
		Data:   make([]byte, int(stride)*int(height)),
	}
}
