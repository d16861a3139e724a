package video

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"media-dock/pkg/performance"
)

func TestPacerStaysFullWhileFast(t *testing.T) {
	p := NewCopyPacer()
	for i := 0; i < 100; i++ {
		assert.True(t, p.ShouldCopy(performance.Report{AvgCopyMs: 1.0}))
	}
	assert.Equal(t, PaceFull, p.Mode())
}

func TestPacerBacksOffAfterSustainedSlowCopies(t *testing.T) {
	p := NewCopyPacer()
	slow := performance.Report{AvgCopyMs: 12.0}

	for i := 0; i < 3; i++ {
		p.ShouldCopy(slow)
	}
	assert.Equal(t, PaceHalf, p.Mode())

	// Still slow: degrade further.
	for i := 0; i < 5; i++ {
		p.ShouldCopy(slow)
	}
	assert.Equal(t, PaceThird, p.Mode())
}

func TestPacerHalfCopiesEveryOtherFrame(t *testing.T) {
	p := NewCopyPacer()
	slow := performance.Report{AvgCopyMs: 12.0}
	for i := 0; i < 3; i++ {
		p.ShouldCopy(slow)
	}
	assert.Equal(t, PaceHalf, p.Mode())

	// Middle-zone timing holds the mode steady; copies alternate.
	mid := performance.Report{AvgCopyMs: 6.0}
	copies := 0
	for i := 0; i < 100; i++ {
		if p.ShouldCopy(mid) {
			copies++
		}
	}
	assert.Equal(t, 50, copies)
}

func TestPacerRecoversWithHysteresis(t *testing.T) {
	p := NewCopyPacer()
	slow := performance.Report{AvgCopyMs: 12.0}
	good := performance.Report{AvgCopyMs: 1.0}

	for i := 0; i < 3; i++ {
		p.ShouldCopy(slow)
	}
	assert.Equal(t, PaceHalf, p.Mode())

	// A brief good spell is not enough.
	for i := 0; i < 10; i++ {
		p.ShouldCopy(good)
	}
	assert.Equal(t, PaceHalf, p.Mode())

	for i := 0; i < 60; i++ {
		p.ShouldCopy(good)
	}
	assert.Equal(t, PaceFull, p.Mode())
}

func TestPacerReset(t *testing.T) {
	p := NewCopyPacer()
	slow := performance.Report{AvgCopyMs: 12.0}
	for i := 0; i < 3; i++ {
		p.ShouldCopy(slow)
	}
	assert.Equal(t, PaceHalf, p.Mode())

	p.Reset()
	assert.Equal(t, PaceFull, p.Mode())
	assert.True(t, p.ShouldCopy(performance.Report{}))
}
