package mediafs

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

var clipExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// AvailableClips lists the playable clips currently in the local cache,
// sorted by name.
func AvailableClips() ([]string, error) {
	entries, err := os.ReadDir(CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var clips []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !clipExtensions[ext] {
			continue // leave .part files and strays alone
		}
		clips = append(clips, filepath.Join(CacheDir, entry.Name()))
	}
	return clips, nil
}

// ClearCache removes all cached clips, including abandoned temp files.
func ClearCache() error {
	entries, err := os.ReadDir(CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(CacheDir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("ClearCache: failed to remove %s: %v", path, err)
		}
	}
	return nil
}
