package library

import (
	"github.com/veandco/go-sdl2/sdl"

	"media-dock/ui"
)

// Draw renders the complete launcher frame. The collection cards occupy the
// left column; everything attached to the slot registry (the crossfading
// preview) renders in its themed rectangle.
func (s *LibraryScreen) Draw() error {
	w, h := s.window.GetSize()

	s.renderer.SetDrawColor(10, 14, 26, 255)
	s.renderer.Clear()

	s.drawCards(w, h)

	if err := s.registry.Draw(s.renderer); err != nil {
		return err
	}

	s.drawHints(w, h)

	s.renderer.Present()
	return nil
}

// drawCards renders one card per collection down the left column.
func (s *LibraryScreen) drawCards(screenWidth, screenHeight int32) {
	if s.fonts == nil {
		return
	}

	columnWidth := screenWidth / 3
	margin := int32(40)
	cardWidth := columnWidth - 2*margin
	cardHeight := int32(180)
	spacing := int32(24)

	titleColor := sdl.Color{R: 255, G: 255, B: 255, A: 255}
	ui.RenderText(s.renderer, "Collections", margin, 40, titleColor, s.fonts.Title)

	cardY := int32(120)
	for i, coll := range s.collections {
		if cardY+cardHeight > screenHeight {
			break
		}

		rect := sdl.Rect{X: margin, Y: cardY, W: cardWidth, H: cardHeight}
		top, bottom := cardColors(coll.Title)
		ui.DrawGradientRect(s.renderer, rect, top, bottom)

		if i == s.selectedCard {
			ui.DrawFrameRect(s.renderer, sdl.Rect{X: rect.X - 3, Y: rect.Y - 3, W: rect.W + 6, H: rect.H + 6},
				sdl.Color{R: 255, G: 255, B: 255, A: 255}, 3)
		}
		if i == s.activeCollection {
			ui.RenderText(s.renderer, "Now playing", rect.X+24, rect.Y+rect.H-72,
				sdl.Color{R: 134, G: 239, B: 172, A: 255}, s.fonts.Small)
		}

		ui.RenderText(s.renderer, coll.Title, rect.X+24, rect.Y+24, titleColor, s.fonts.Title)
		ui.RenderText(s.renderer, coll.Description, rect.X+24, rect.Y+rect.H-44,
			sdl.Color{R: 255, G: 255, B: 255, A: 200}, s.fonts.Small)

		cardY += cardHeight + spacing
	}
}

// drawHints renders the key legend along the bottom edge.
func (s *LibraryScreen) drawHints(screenWidth, screenHeight int32) {
	if s.fonts == nil || s.fonts.Small == nil {
		return
	}
	hintColor := sdl.Color{R: 156, G: 163, B: 175, A: 255}
	ui.RenderText(s.renderer, "Up/Down Select | Enter Switch Collection | Right Next Clip | P Save Poster",
		40, screenHeight-36, hintColor, s.fonts.Small)
}

// cardColors picks the gradient for a collection card.
func cardColors(title string) (top, bottom [3]uint8) {
	switch title {
	case "Impressionism":
		return [3]uint8{41, 98, 255}, [3]uint8{13, 71, 161}
	case "Abstract":
		return [3]uint8{156, 39, 176}, [3]uint8{74, 20, 140}
	default:
		return [3]uint8{99, 102, 241}, [3]uint8{67, 56, 202}
	}
}
