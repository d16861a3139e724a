// Package compose renders raw BGRA frames into Go images in software. It
// backs the headless render path of preview controls (hosts without an SDL
// renderer, thumbnail capture, tests) with the same stretch-mode geometry
// the GPU path uses.
package compose

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// FrameImage converts a BGRA frame into an *image.RGBA. stride is in bytes.
// Returns nil for degenerate geometry or a short buffer.
func FrameImage(src []byte, width, height, stride int) *image.RGBA {
	if width <= 0 || height <= 0 || stride < width*4 || len(src) < stride*height {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcRow := src[y*stride : y*stride+width*4]
		dstRow := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := 0; x < width*4; x += 4 {
			dstRow[x+0] = srcRow[x+2] // R <- B slot
			dstRow[x+1] = srcRow[x+1] // G
			dstRow[x+2] = srcRow[x+0] // B <- R slot
			dstRow[x+3] = srcRow[x+3] // A
		}
	}
	return img
}

// Composite scales a BGRA frame into target (a rectangle inside dst)
// honoring the stretch mode, blending with the given opacity (0..1).
// Degenerate frames or targets, and opacity <= 0, draw nothing.
func Composite(dst *image.RGBA, target image.Rectangle, src []byte, width, height, stride int, mode StretchMode, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}

	x, y, w, h, ok := DestRect(width, height, target.Dx(), target.Dy(), mode)
	if !ok {
		return
	}
	img := FrameImage(src, width, height, stride)
	if img == nil {
		return
	}

	// Scale into an intermediate of the mapped size, then blend the part
	// that intersects the target. UniformToFill relies on this intersection
	// for its edge crop.
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	mapped := image.Rect(target.Min.X+x, target.Min.Y+y, target.Min.X+x+w, target.Min.Y+y+h)
	visible := mapped.Intersect(target)
	if visible.Empty() {
		return
	}

	srcPt := image.Pt(visible.Min.X-mapped.Min.X, visible.Min.Y-mapped.Min.Y)
	if opacity >= 1 {
		draw.Draw(dst, visible, scaled, srcPt, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, visible, scaled, srcPt, mask, image.Point{}, draw.Over)
}
