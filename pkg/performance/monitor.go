// Package performance tracks timing of the preview pipeline's render-thread
// work so the copy pacer can throttle when the host falls behind.
package performance

import (
	"sync"
	"time"
)

// rollingWindow keeps a fixed-size ring of duration samples and their sum.
type rollingWindow struct {
	samples []time.Duration
	sum     time.Duration
	index   int
	filled  bool
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{samples: make([]time.Duration, size)}
}

func (w *rollingWindow) add(d time.Duration) {
	if w.filled {
		w.sum -= w.samples[w.index]
	}
	w.samples[w.index] = d
	w.sum += d
	w.index++
	if w.index == len(w.samples) {
		w.index = 0
		w.filled = true
	}
}

func (w *rollingWindow) average() time.Duration {
	n := w.index
	if w.filled {
		n = len(w.samples)
	}
	if n == 0 {
		return 0
	}
	return w.sum / time.Duration(n)
}

func (w *rollingWindow) reset() {
	w.sum = 0
	w.index = 0
	w.filled = false
	for i := range w.samples {
		w.samples[i] = 0
	}
}

// Monitor aggregates per-frame timings for one preview channel: the
// snapshot-and-copy step and the texture upload + draw step, both on the
// render thread.
type Monitor struct {
	mu        sync.RWMutex
	copyTimes *rollingWindow
	drawTimes *rollingWindow
	copied    int
	skipped   int
	started   time.Time
}

// Report is a point-in-time aggregation of a Monitor.
type Report struct {
	AvgCopyMs     float64
	AvgDrawMs     float64
	SkipRate      float64 // percentage of frame-ready signals not copied
	FramesCopied  int
	FramesSkipped int
	Uptime        time.Duration
}

// NewMonitor creates a monitor averaging over windowSize frames
// (120 covers two seconds at 60fps).
func NewMonitor(windowSize int) *Monitor {
	return &Monitor{
		copyTimes: newRollingWindow(windowSize),
		drawTimes: newRollingWindow(windowSize),
		started:   time.Now(),
	}
}

// RecordCopy records one snapshot-and-copy duration.
func (m *Monitor) RecordCopy(d time.Duration) {
	m.mu.Lock()
	m.copyTimes.add(d)
	m.copied++
	m.mu.Unlock()
}

// RecordDraw records one texture upload + draw duration.
func (m *Monitor) RecordDraw(d time.Duration) {
	m.mu.Lock()
	m.drawTimes.add(d)
	m.mu.Unlock()
}

// RecordSkip counts a frame-ready signal that was deliberately not copied.
func (m *Monitor) RecordSkip() {
	m.mu.Lock()
	m.skipped++
	m.mu.Unlock()
}

// GetReport snapshots the current metrics.
func (m *Monitor) GetReport() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.copied + m.skipped
	skipRate := 0.0
	if total > 0 {
		skipRate = float64(m.skipped) / float64(total) * 100.0
	}
	return Report{
		AvgCopyMs:     float64(m.copyTimes.average().Microseconds()) / 1000.0,
		AvgDrawMs:     float64(m.drawTimes.average().Microseconds()) / 1000.0,
		SkipRate:      skipRate,
		FramesCopied:  m.copied,
		FramesSkipped: m.skipped,
		Uptime:        time.Since(m.started),
	}
}

// Reset clears all metrics, e.g. when the channel switches clips.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyTimes.reset()
	m.drawTimes.reset()
	m.copied = 0
	m.skipped = 0
	m.started = time.Now()
}
