package ui

import (
	"fmt"

	"github.com/veandco/go-sdl2/ttf"
)

// Fonts manages the TrueType fonts used by the launcher chrome
type Fonts struct {
	Title *ttf.Font // 32px for collection card titles
	Label *ttf.Font // 22px for status labels
	Small *ttf.Font // 16px for descriptions and hints
}

// fontPaths are tried in order so the binary works across distros and macOS
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
}

// LoadFonts initializes TTF and loads each size, falling back through the
// known system font locations.
func LoadFonts() (*Fonts, error) {
	if err := ttf.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize TTF: %v", err)
	}

	fonts := &Fonts{}
	fonts.Title = openFirst(32)
	fonts.Label = openFirst(22)
	fonts.Small = openFirst(16)
	return fonts, nil
}

func openFirst(size int) *ttf.Font {
	for _, path := range fontPaths {
		if font, err := ttf.OpenFont(path, size); err == nil {
			return font
		}
	}
	return nil
}

// Close cleans up font resources
func (f *Fonts) Close() {
	if f.Title != nil {
		f.Title.Close()
	}
	if f.Label != nil {
		f.Label.Close()
	}
	if f.Small != nil {
		f.Small.Close()
	}
}
