package library

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"media-dock/pkg/input"
	"media-dock/pkg/layout"
	"media-dock/pkg/media"
	"media-dock/pkg/player"
	"media-dock/pkg/render"
	"media-dock/pkg/settings"
	"media-dock/pkg/theme"
	"media-dock/ui"
	"media-dock/widgets/preview"
)

// LibraryScreen is the launcher: a column of collection cards on the left
// and a live clip preview on the right. Two players feed the two crossfade
// channels so clip changes dissolve instead of cutting.
type LibraryScreen struct {
	err error

	// Dual playback channels. players[0] feeds crossfade channel A,
	// players[1] channel B. activeIdx is the channel currently faded in.
	players   [2]*player.Player
	fader     *preview.Crossfade
	activeIdx int

	// Local clip library information
	downloadedClips     []string
	collections         []media.Collection
	activeCollection    int
	requestedCollection int
	selectedCard        int
	nextS3Index         int // next clip index to download from the collection

	// Playback configuration persisted across restarts
	settings      settings.Settings
	playbackSpeed float64

	// Runtime state
	currentClip   int
	playStartTime time.Time

	// Background prefetching bookkeeping
	prefetchResultCh chan prefetchResult
	prefetchPending  bool
	queuedNextCalls  int

	// Background collection switch
	switchResultCh chan switchResult
	switchPending  bool

	// Presentation
	window     *sdl.Window
	renderer   *sdl.Renderer
	dispatcher *render.Dispatcher
	registry   *layout.Registry
	skin       theme.Theme
	fonts      *ui.Fonts

	// Input tracking
	keyState   []uint8
	keyTracker input.KeyPressTracker

	lastPerfLog time.Time
}

// Struct used to communicate results of background S3 prefetch operations.
type prefetchResult struct {
	clips         []string
	reachedEnd    bool
	err           error
	collectionIdx int
}

// Struct used to communicate results of background collection switches.
type switchResult struct {
	clips         []string
	reachedEnd    bool
	err           error
	collectionIdx int
}
