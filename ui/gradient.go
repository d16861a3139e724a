package ui

import "github.com/veandco/go-sdl2/sdl"

// DrawGradientRect fills rect with a vertical gradient by drawing
// horizontal lines with interpolated colors.
func DrawGradientRect(renderer *sdl.Renderer, rect sdl.Rect, top, bottom [3]uint8) {
	if rect.H <= 0 || rect.W <= 0 {
		return
	}
	for i := int32(0); i < rect.H; i++ {
		t := float64(i) / float64(rect.H-1)

		r := uint8(float64(top[0])*(1-t) + float64(bottom[0])*t)
		g := uint8(float64(top[1])*(1-t) + float64(bottom[1])*t)
		b := uint8(float64(top[2])*(1-t) + float64(bottom[2])*t)

		renderer.SetDrawColor(r, g, b, 255)
		renderer.DrawLine(rect.X, rect.Y+i, rect.X+rect.W-1, rect.Y+i)
	}
}

// DrawFrameRect outlines rect with the given color, thickness pixels deep.
func DrawFrameRect(renderer *sdl.Renderer, rect sdl.Rect, color sdl.Color, thickness int32) {
	renderer.SetDrawColor(color.R, color.G, color.B, color.A)
	for i := int32(0); i < thickness; i++ {
		inset := sdl.Rect{X: rect.X + i, Y: rect.Y + i, W: rect.W - 2*i, H: rect.H - 2*i}
		if inset.W <= 0 || inset.H <= 0 {
			return
		}
		renderer.DrawRect(&inset)
	}
}
