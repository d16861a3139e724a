// Package video holds decode/copy pacing policy shared by preview channels.
package video

import (
	"log"
	"sync"
	"time"

	"media-dock/pkg/performance"
)

// PaceMode is the current copy-throttling strategy for a channel.
type PaceMode int

const (
	PaceFull  PaceMode = iota // copy every ready frame
	PaceHalf                  // copy every 2nd ready frame
	PaceThird                 // copy every 3rd ready frame
)

func (m PaceMode) String() string {
	switch m {
	case PaceFull:
		return "Full"
	case PaceHalf:
		return "Half"
	case PaceThird:
		return "Third"
	default:
		return "Unknown"
	}
}

// CopyPacer decides whether a frame-ready signal should schedule a copy onto
// the render thread. When the render thread's copy step gets slow, it backs
// off to copying every 2nd or 3rd frame; when timings recover it steps back
// up. Hysteresis counters keep it from thrashing between modes.
type CopyPacer struct {
	mu sync.Mutex

	mode    PaceMode
	counter uint64

	consecutiveSlow int
	consecutiveGood int

	slowThreshold time.Duration
	goodThreshold time.Duration

	enterHalfAfter  int
	enterThirdAfter int
	exitHalfAfter   int
	exitThirdAfter  int
}

// NewCopyPacer creates a pacer with thresholds tuned for a 60fps render
// loop's 16.7ms budget.
func NewCopyPacer() *CopyPacer {
	return &CopyPacer{
		mode:          PaceFull,
		slowThreshold: 8 * time.Millisecond,
		goodThreshold: 4 * time.Millisecond,

		enterHalfAfter:  3,
		enterThirdAfter: 5,
		exitHalfAfter:   60,
		exitThirdAfter:  30,
	}
}

// ShouldCopy classifies the latest timings and reports whether the next
// ready frame should be copied.
func (p *CopyPacer) ShouldCopy(report performance.Report) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.counter++
	p.transitionLocked(report)

	switch p.mode {
	case PaceHalf:
		return p.counter%2 == 0
	case PaceThird:
		return p.counter%3 == 0
	default:
		return true
	}
}

func (p *CopyPacer) transitionLocked(report performance.Report) {
	avgCopy := time.Duration(report.AvgCopyMs * float64(time.Millisecond))

	switch {
	case avgCopy > p.slowThreshold:
		p.consecutiveSlow++
		p.consecutiveGood = 0
	case avgCopy < p.goodThreshold:
		p.consecutiveGood++
		p.consecutiveSlow = 0
	default:
		// Middle zone resets both streaks so borderline timings do not
		// drift the mode either way.
		p.consecutiveSlow = 0
		p.consecutiveGood = 0
	}

	switch p.mode {
	case PaceFull:
		if p.consecutiveSlow >= p.enterHalfAfter {
			p.mode = PaceHalf
			p.consecutiveSlow = 0
			log.Printf("CopyPacer: copies running slow, dropping to Half pace")
		}
	case PaceHalf:
		if p.consecutiveSlow >= p.enterThirdAfter {
			p.mode = PaceThird
			p.consecutiveSlow = 0
			log.Printf("CopyPacer: still slow, dropping to Third pace")
		} else if p.consecutiveGood >= p.exitHalfAfter {
			p.mode = PaceFull
			p.consecutiveGood = 0
			log.Printf("CopyPacer: timings recovered, back to Full pace")
		}
	case PaceThird:
		if p.consecutiveGood >= p.exitThirdAfter {
			p.mode = PaceHalf
			p.consecutiveGood = 0
			log.Printf("CopyPacer: timings improving, back to Half pace")
		}
	}
}

// Mode returns the current pace mode.
func (p *CopyPacer) Mode() PaceMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Reset returns the pacer to Full pace, e.g. when a channel switches clips.
func (p *CopyPacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = PaceFull
	p.counter = 0
	p.consecutiveSlow = 0
	p.consecutiveGood = 0
}
