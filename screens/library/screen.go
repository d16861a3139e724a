// Package library implements the launcher screen: collection cards beside a
// live, crossfading clip preview.
package library

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"media-dock/pkg/backend"
	"media-dock/pkg/backend/ffmpeg"
	"media-dock/pkg/backend/gst"
	"media-dock/pkg/input"
	"media-dock/pkg/layout"
	"media-dock/pkg/media"
	"media-dock/pkg/mediafs"
	"media-dock/pkg/performance"
	"media-dock/pkg/player"
	"media-dock/pkg/render"
	"media-dock/pkg/settings"
	"media-dock/pkg/theme"
	"media-dock/ui"
	"media-dock/widgets/preview"
)

const (
	previewSlot         = "preview"
	defaultRotatePeriod = 90 * time.Second
	themePath           = "assets/theme.yaml"
)

// prefetchCount returns how many clips to keep downloaded ahead, at least
// one so playback can always start.
func prefetchCount() int {
	n := performance.PrefetchBudget()
	if n == 0 {
		n = 1
	}
	return n
}

// newDecoder picks the decode backend. GStreamer handles containers the
// local libav build may lack; libav stays the default for its lower startup
// latency.
func newDecoder() backend.Decoder {
	if os.Getenv("VIDEO_BACKEND") == "gst" {
		log.Printf("library: using GStreamer decode backend")
		return gst.New()
	}
	return ffmpeg.New()
}

// NewLibraryScreen creates and initializes the launcher screen.
func NewLibraryScreen(window *sdl.Window, renderer *sdl.Renderer, dispatcher *render.Dispatcher) *LibraryScreen {
	// Clean up clips left over from a previous run
	if err := mediafs.ClearCache(); err != nil {
		log.Printf("NewLibraryScreen: cache cleanup failed: %v", err)
	}

	userSettings := settings.Load()
	skin := theme.Load(themePath)

	collections := []media.Collection{
		{
			Id:          "1",
			Title:       "Impressionism",
			Description: "Light, color, and fleeting moments.",
			Bucket:      "media-dock",
			Folder:      "calm-abstract",
			Loop:        true,
		},
		{
			Id:          "2",
			Title:       "Abstract",
			Description: "Beyond the tangible world.",
			Bucket:      "media-dock",
			Folder:      "ai-gen",
			Loop:        true,
		},
	}

	// Download initial clips from the first collection, falling back to
	// whatever survives locally when the network is down.
	count := prefetchCount()
	log.Printf("NewLibraryScreen: initial prefetch count = %d", count)
	initialClips, reachedEnd, err := mediafs.DownloadSegment(collections[0], 0, count)
	if err != nil || len(initialClips) == 0 {
		log.Printf("NewLibraryScreen: initial download failed (%v), checking local cache", err)
		initialClips, err = mediafs.AvailableClips()
		if err != nil || len(initialClips) == 0 {
			panic("no clips available to play")
		}
	}

	var nextS3Index int
	if reachedEnd {
		nextS3Index = 0
	} else {
		nextS3Index = len(initialClips)
	}

	s := &LibraryScreen{
		collections:         collections,
		downloadedClips:     initialClips,
		activeCollection:    0,
		requestedCollection: 0,
		nextS3Index:         nextS3Index,
		currentClip:         0,
		settings:            userSettings,
		playbackSpeed:       userSettings.PlaybackSpeed,
		playStartTime:       time.Now(),
		prefetchResultCh:    make(chan prefetchResult, 1),
		switchResultCh:      make(chan switchResult, 1),
		window:              window,
		renderer:            renderer,
		dispatcher:          dispatcher,
		registry:            layout.NewRegistry(),
		skin:                skin,
		keyTracker:          input.NewKeyPressTracker(),
	}

	fonts, err := ui.LoadFonts()
	if err != nil {
		log.Printf("Warning: failed to initialize fonts: %v", err)
	}
	s.fonts = fonts

	// One player per crossfade channel; the idle channel preloads the next
	// clip so transitions dissolve instead of cutting.
	s.players[0] = player.New(newDecoder())
	s.players[1] = player.New(newDecoder())

	a := preview.NewControl(dispatcher)
	b := preview.NewControl(dispatcher)
	a.SetStretchMode(skin.StretchMode())
	b.SetStretchMode(skin.StretchMode())
	a.SetEnabled(skin.ChannelEnabled("a"))
	b.SetEnabled(skin.ChannelEnabled("b"))

	s.fader = preview.NewCrossfade(a, b)
	s.fader.SetChannelSource(preview.ChannelA, s.players[0].Surface())
	s.fader.SetChannelSource(preview.ChannelB, s.players[1].Surface())

	fadeDuration := skin.FadeDuration()
	if userSettings.FadeDurationMs > 0 {
		fadeDuration = time.Duration(userSettings.FadeDurationMs) * time.Millisecond
	}
	s.fader.SetFadeDuration(fadeDuration)

	for _, slot := range skin.Slots {
		s.registry.DefineSlot(slot.Name, sdl.Rect{X: slot.X, Y: slot.Y, W: slot.W, H: slot.H})
	}
	if err := s.registry.Attach(s.fader, previewSlot); err != nil {
		log.Printf("NewLibraryScreen: %v", err)
	}

	// Start the first clip on channel A.
	if err := s.startClipOn(0, s.downloadedClips[0]); err != nil {
		panic(err)
	}
	s.fader.SetActive(preview.ChannelA)
	s.activeIdx = 0

	return s
}

// startClipOn loads and plays a clip on the given channel's player.
func (s *LibraryScreen) startClipOn(channel int, path string) error {
	p := s.players[channel]
	if err := p.Load(path); err != nil {
		return err
	}
	p.SetPlaybackRate(s.playbackSpeed)
	if err := p.Play(); err != nil {
		return err
	}
	s.playStartTime = time.Now()
	log.Printf("library: channel %d playing %s", channel, path)
	return nil
}

// Update processes input and advances playback state. Call once per frame.
func (s *LibraryScreen) Update() error {
	s.keyState = sdl.GetKeyboardState()

	s.handleInput()
	s.handleRotation()
	s.handlePrefetchResults()
	s.handleCollectionSwitching()

	s.fader.Update(time.Now())
	s.logPerformanceMetrics()

	return s.err
}

// handleInput processes SDL2 keyboard input.
func (s *LibraryScreen) handleInput() {
	if s.keyTracker.IsPressed(s.keyState, sdl.SCANCODE_RIGHT) {
		s.nextClip()
	}
	if s.keyTracker.IsPressed(s.keyState, sdl.SCANCODE_DOWN) {
		s.moveSelection(1)
	}
	if s.keyTracker.IsPressed(s.keyState, sdl.SCANCODE_UP) {
		s.moveSelection(-1)
	}
	if s.keyTracker.IsPressed(s.keyState, sdl.SCANCODE_RETURN) {
		s.requestCollection(s.selectedCard)
	}
	if s.keyTracker.IsPressed(s.keyState, sdl.SCANCODE_P) {
		s.capturePoster()
	}
}

func (s *LibraryScreen) moveSelection(delta int) {
	s.selectedCard += delta
	if s.selectedCard < 0 {
		s.selectedCard = 0
	}
	if s.selectedCard >= len(s.collections) {
		s.selectedCard = len(s.collections) - 1
	}
}

// requestCollection asks for a switch to another collection; the download
// happens in the background and the preview keeps playing meanwhile.
func (s *LibraryScreen) requestCollection(idx int) {
	if idx < 0 || idx >= len(s.collections) {
		log.Printf("requestCollection: invalid index %d", idx)
		return
	}
	if idx == s.activeCollection {
		return
	}
	log.Printf("requestCollection: requesting %s", s.collections[idx].Title)
	s.requestedCollection = idx
}

// handleRotation advances to the next clip after the rotation period.
func (s *LibraryScreen) handleRotation() {
	if time.Since(s.playStartTime) >= defaultRotatePeriod {
		log.Printf("Update: rotating to next clip")
		s.nextClip()
	}
}

// nextClip starts the next buffered clip on the idle channel and fades it
// in; the previous channel keeps its last frame while fading out.
func (s *LibraryScreen) nextClip() {
	if s.prefetchPending {
		s.queuedNextCalls = 1
		log.Printf("nextClip: prefetch pending, queued request")
		return
	}

	s.err = nil

	if len(s.downloadedClips) <= 1 {
		log.Printf("nextClip: no further clips in buffer")
		s.startPrefetch()
		return
	}

	s.cleanupCurrentClip()

	nextPath := s.downloadedClips[s.currentClip]
	idle := 1 - s.activeIdx
	if err := s.startClipOn(idle, nextPath); err != nil {
		s.err = err
		return
	}

	s.activeIdx = idle
	s.fader.SetActive(channelOf(idle))

	s.startPrefetch()
}

// cleanupCurrentClip removes the played clip from disk and the buffer. The
// player that showed it keeps its last frame for the fade-out.
func (s *LibraryScreen) cleanupCurrentClip() {
	playedPath := s.downloadedClips[s.currentClip]

	if err := os.Remove(playedPath); err != nil {
		log.Printf("cleanupCurrentClip: failed to remove %s: %v", playedPath, err)
	}

	s.downloadedClips = append(s.downloadedClips[:s.currentClip], s.downloadedClips[s.currentClip+1:]...)
	s.currentClip = 0
}

// startPrefetch begins background download of upcoming clips when the
// buffer runs below the memory-derived budget.
func (s *LibraryScreen) startPrefetch() {
	if s.prefetchPending {
		return
	}
	missing := prefetchCount() - len(s.downloadedClips)
	if missing <= 0 {
		return
	}

	s.prefetchPending = true
	collIdx := s.activeCollection
	startIdx := s.nextS3Index
	log.Printf("startPrefetch: downloading %d clip(s) [avail=%dMB]",
		missing, performance.GetSystemMemory().AvailableMB)

	go func(collection media.Collection, collectionIdx, start, count int) {
		clips, end, err := mediafs.DownloadSegment(collection, start, count)
		s.prefetchResultCh <- prefetchResult{
			clips:         clips,
			reachedEnd:    end,
			err:           err,
			collectionIdx: collectionIdx,
		}
	}(s.collections[collIdx], collIdx, startIdx, missing)
}

// handlePrefetchResults processes completed background prefetch operations.
func (s *LibraryScreen) handlePrefetchResults() {
	select {
	case res := <-s.prefetchResultCh:
		if res.err != nil {
			log.Printf("prefetch: %v", res.err)
		} else if res.collectionIdx == s.activeCollection {
			if len(res.clips) > 0 {
				s.downloadedClips = append(s.downloadedClips, res.clips...)
				s.nextS3Index += len(res.clips)
				log.Printf("prefetch: appended %d clip(s) to buffer", len(res.clips))
			}
			if res.reachedEnd {
				s.nextS3Index = 0
				log.Printf("prefetch: reached end of collection, wrapping to start")
			}
		} else {
			log.Printf("prefetch: discarding outdated results for collection %d", res.collectionIdx)
		}
		s.prefetchPending = false

		for s.queuedNextCalls > 0 && !s.prefetchPending {
			s.queuedNextCalls--
			s.nextClip()
		}
	default:
	}
}

// handleCollectionSwitching manages background collection downloads and the
// switch itself.
func (s *LibraryScreen) handleCollectionSwitching() {
	if s.requestedCollection != s.activeCollection && !s.switchPending {
		s.switchPending = true
		idx := s.requestedCollection
		log.Printf("Update: starting collection download for %s", s.collections[idx].Title)

		go func(collection media.Collection, collectionIdx int) {
			clips, end, err := mediafs.DownloadSegment(collection, 0, prefetchCount())
			s.switchResultCh <- switchResult{
				clips:         clips,
				reachedEnd:    end,
				err:           err,
				collectionIdx: collectionIdx,
			}
		}(s.collections[idx], idx)
	}

	select {
	case sw := <-s.switchResultCh:
		if sw.err != nil {
			s.err = sw.err
		} else if sw.collectionIdx != s.requestedCollection {
			log.Printf("switch: discarding outdated results for collection %d", sw.collectionIdx)
		} else if len(sw.clips) == 0 {
			s.err = errors.New("no clips downloaded for new collection")
		} else {
			if err := s.applyNewCollection(sw.collectionIdx, sw.clips, sw.reachedEnd); err != nil {
				s.err = err
			}
		}
		s.switchPending = false
	default:
	}
}

// applyNewCollection switches to a collection downloaded in the background.
func (s *LibraryScreen) applyNewCollection(idx int, clips []string, reachedEnd bool) error {
	log.Printf("applyNewCollection: switching to %s", s.collections[idx].Title)

	for _, p := range s.downloadedClips {
		_ = os.Remove(p)
	}

	s.downloadedClips = clips
	s.currentClip = 0
	s.activeCollection = idx
	if reachedEnd {
		s.nextS3Index = 0
	} else {
		s.nextS3Index = len(clips)
	}

	idle := 1 - s.activeIdx
	if err := s.startClipOn(idle, clips[0]); err != nil {
		return err
	}
	s.activeIdx = idle
	s.fader.SetActive(channelOf(idle))

	log.Printf("applyNewCollection: switched to %s with %d clips", s.collections[idx].Title, len(clips))
	return nil
}

// SetPlaybackSpeed updates the playback speed on both channels.
func (s *LibraryScreen) SetPlaybackSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	log.Printf("SetPlaybackSpeed: updating to %.2fx", speed)
	s.playbackSpeed = speed
	for _, p := range s.players {
		p.SetPlaybackRate(speed)
	}
	s.settings.PlaybackSpeed = speed
	if err := settings.Save(s.settings); err != nil {
		log.Printf("SetPlaybackSpeed: failed to persist: %v", err)
	}
}

// Collections returns the list of available collections.
func (s *LibraryScreen) Collections() []media.Collection {
	return s.collections
}

// logPerformanceMetrics logs preview timing stats periodically.
func (s *LibraryScreen) logPerformanceMetrics() {
	now := time.Now()
	if now.Sub(s.lastPerfLog) < 5*time.Second {
		return
	}
	s.lastPerfLog = now

	active := s.fader.Channel(channelOf(s.activeIdx))
	if active == nil {
		return
	}
	report := active.Monitor().GetReport()
	log.Printf("Preview: Copy=%.2fms Draw=%.2fms Copied=%d Skipped=%d (%.1f%%) Frames=%d",
		report.AvgCopyMs, report.AvgDrawMs,
		report.FramesCopied, report.FramesSkipped, report.SkipRate,
		s.players[s.activeIdx].FramesDisplayed())
}

// Close releases both playback channels and the UI resources.
func (s *LibraryScreen) Close() {
	for _, p := range s.players {
		p.Dispose()
	}
	s.fader.Dispose()
	if s.fonts != nil {
		s.fonts.Close()
	}
}

func channelOf(idx int) preview.ChannelIndex {
	if idx == 0 {
		return preview.ChannelA
	}
	return preview.ChannelB
}
