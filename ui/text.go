package ui

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

// RenderText renders text at the specified position with the given font and color
func RenderText(renderer *sdl.Renderer, text string, x, y int32, color sdl.Color, font *ttf.Font) error {
	_, _, err := renderTextAt(renderer, text, x, y, color, font)
	return err
}

// RenderTextCentered renders text horizontally centered around centerX
func RenderTextCentered(renderer *sdl.Renderer, text string, centerX, y int32, color sdl.Color, font *ttf.Font) error {
	if font == nil {
		return fmt.Errorf("font not available")
	}
	w, _, err := font.SizeUTF8(text)
	if err != nil {
		return err
	}
	_, _, err = renderTextAt(renderer, text, centerX-int32(w)/2, y, color, font)
	return err
}

func renderTextAt(renderer *sdl.Renderer, text string, x, y int32, color sdl.Color, font *ttf.Font) (int32, int32, error) {
	if font == nil {
		return 0, 0, fmt.Errorf("font not available")
	}

	surface, err := font.RenderUTF8Blended(text, color)
	if err != nil {
		return 0, 0, err
	}
	defer surface.Free()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return 0, 0, err
	}
	defer texture.Destroy()

	_, _, w, h, err := texture.Query()
	if err != nil {
		return 0, 0, err
	}

	dstRect := sdl.Rect{X: x, Y: y, W: w, H: h}
	return w, h, renderer.Copy(texture, nil, &dstRect)
}
