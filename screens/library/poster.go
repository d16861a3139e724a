package library

import (
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const posterDir = "assets/posters"

// poster geometry matches the preview slot aspect so saved images look like
// what was on screen
const (
	posterWidth  = 640
	posterHeight = 360
)

// capturePoster renders the active channel's current frame to a PNG on
// disk. Useful for building collection artwork from running previews.
func (s *LibraryScreen) capturePoster() {
	active := s.fader.Channel(channelOf(s.activeIdx))
	if active == nil {
		return
	}
	img := active.Thumbnail(posterWidth, posterHeight)
	if img == nil {
		log.Printf("capturePoster: no frame presented yet")
		return
	}

	if err := os.MkdirAll(posterDir, os.ModePerm); err != nil {
		log.Printf("capturePoster: %v", err)
		return
	}
	path := filepath.Join(posterDir, "poster-"+uuid.New().String()+".png")

	f, err := os.Create(path)
	if err != nil {
		log.Printf("capturePoster: %v", err)
		return
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		log.Printf("capturePoster: encode failed: %v", err)
		return
	}
	log.Printf("capturePoster: saved %s", path)
}
