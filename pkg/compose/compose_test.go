package compose

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestRectFill(t *testing.T) {
	x, y, w, h, ok := DestRect(1920, 1080, 800, 600, Fill)
	require.True(t, ok)
	assert.Equal(t, [4]int{0, 0, 800, 600}, [4]int{x, y, w, h})
}

func TestDestRectUniformLetterboxes(t *testing.T) {
	// 16:9 source into a 4:3 target: full width, letterboxed height.
	x, y, w, h, ok := DestRect(1920, 1080, 800, 600, Uniform)
	require.True(t, ok)
	assert.Equal(t, 800, w)
	assert.Equal(t, 450, h)
	assert.Equal(t, 0, x)
	assert.Equal(t, 75, y)
}

func TestDestRectUniformMatchingAspectFillsExactly(t *testing.T) {
	// Scenario from the pipeline contract: 1920x1080 under Uniform into an
	// 800x450 target (same aspect) is a centered exact fit, no boxing.
	x, y, w, h, ok := DestRect(1920, 1080, 800, 450, Uniform)
	require.True(t, ok)
	assert.Equal(t, [4]int{0, 0, 800, 450}, [4]int{x, y, w, h})
}

func TestDestRectUniformToFillOverflowsAndCenters(t *testing.T) {
	// 16:9 source covering a 4:3 target: full height, cropped width.
	x, y, w, h, ok := DestRect(1920, 1080, 800, 600, UniformToFill)
	require.True(t, ok)
	assert.Equal(t, 600, h)
	assert.Equal(t, 1067, w)
	assert.Equal(t, 0, y)
	assert.Equal(t, (800-1067)/2, x)
	assert.Less(t, x, 0, "covering rect must overflow the target")
}

func TestDestRectDegenerateInputs(t *testing.T) {
	for _, c := range [][4]int{
		{0, 1080, 800, 600},
		{1920, 0, 800, 600},
		{1920, 1080, 0, 600},
		{1920, 1080, 800, 0},
	} {
		_, _, _, _, ok := DestRect(c[0], c[1], c[2], c[3], Uniform)
		assert.False(t, ok, "geometry %v must render nothing", c)
	}
}

func TestParseStretchMode(t *testing.T) {
	assert.Equal(t, Fill, ParseStretchMode("fill"))
	assert.Equal(t, UniformToFill, ParseStretchMode("UniformToFill"))
	assert.Equal(t, UniformToFill, ParseStretchMode("cover"))
	assert.Equal(t, Uniform, ParseStretchMode("uniform"))
	assert.Equal(t, Uniform, ParseStretchMode("nonsense"))
}

// solidBGRA builds a width x height frame of one BGRA color.
func solidBGRA(width, height int, b, g, r, a byte) []byte {
	buf := make([]byte, width*height*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i], buf[i+1], buf[i+2], buf[i+3] = b, g, r, a
	}
	return buf
}

func TestFrameImageSwapsChannels(t *testing.T) {
	src := solidBGRA(2, 2, 10, 20, 30, 255) // B=10 G=20 R=30
	img := FrameImage(src, 2, 2, 8)
	require.NotNil(t, img)
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(30), r>>8)
	assert.Equal(t, uint32(20), g>>8)
	assert.Equal(t, uint32(10), b>>8)
}

func TestFrameImageRejectsShortBuffer(t *testing.T) {
	assert.Nil(t, FrameImage(make([]byte, 10), 64, 64, 256))
	assert.Nil(t, FrameImage(nil, 0, 0, 0))
}

func TestCompositeUniformScenario(t *testing.T) {
	// A 1920x1080 red frame composited under Uniform into an 800x450 target
	// covers the whole target (aspect matches, so no letterbox bars).
	src := solidBGRA(1920, 1080, 0, 0, 255, 255)
	dst := image.NewRGBA(image.Rect(0, 0, 800, 450))

	Composite(dst, dst.Bounds(), src, 1920, 1080, 1920*4, Uniform, 1.0)

	for _, pt := range []image.Point{{0, 0}, {400, 225}, {799, 449}} {
		r, _, _, a := dst.At(pt.X, pt.Y).RGBA()
		assert.Equal(t, uint32(255), r>>8, "red at %v", pt)
		assert.Equal(t, uint32(255), a>>8, "opaque at %v", pt)
	}
}

func TestCompositeUniformLeavesBarsUntouched(t *testing.T) {
	src := solidBGRA(100, 100, 0, 0, 255, 255) // square source
	dst := image.NewRGBA(image.Rect(0, 0, 200, 100))

	Composite(dst, dst.Bounds(), src, 100, 100, 400, Uniform, 1.0)

	// Centered 100x100; pillar bars at the sides stay transparent black.
	_, _, _, a := dst.At(10, 50).RGBA()
	assert.Equal(t, uint32(0), a)
	r, _, _, _ := dst.At(100, 50).RGBA()
	assert.Equal(t, uint32(255), r>>8)
}

func TestCompositeHonorsOpacity(t *testing.T) {
	src := solidBGRA(10, 10, 0, 0, 255, 255)
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))

	Composite(dst, dst.Bounds(), src, 10, 10, 40, Fill, 0.5)

	r, _, _, _ := dst.At(5, 5).RGBA()
	got := int(r >> 8)
	assert.InDelta(t, 127, got, 2.0)
}

func TestCompositeZeroOpacityDrawsNothing(t *testing.T) {
	src := solidBGRA(10, 10, 0, 0, 255, 255)
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))

	Composite(dst, dst.Bounds(), src, 10, 10, 40, Fill, 0)

	_, _, _, a := dst.At(5, 5).RGBA()
	assert.Equal(t, uint32(0), a)
}
