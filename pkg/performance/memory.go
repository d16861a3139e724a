package performance

import (
	"runtime"
	"time"
)

// MemorySnapshot is a point-in-time view of system memory, in MB.
type MemorySnapshot struct {
	Timestamp   time.Time
	TotalMB     uint64
	AvailableMB uint64
}

// GoHeapMB returns the Go runtime's current heap allocation in MB.
func GoHeapMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc / (1024 * 1024)
}

// PrefetchBudget translates available memory into how many preview clips may
// be prefetched ahead of the current selection. Each clip weighs in around
// 200MB on the low-end devices this runs on, so the thresholds stay
// conservative.
func PrefetchBudget() int {
	avail := GetSystemMemory().AvailableMB
	switch {
	case avail < 400:
		return 0
	case avail < 700:
		return 1
	case avail < 1000:
		return 2
	default:
		return 3
	}
}
