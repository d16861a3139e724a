//go:build darwin

package performance

import (
	"runtime"
	"time"
)

// GetSystemMemory approximates memory state from Go runtime stats; sysinfo
// is not available on Darwin and the development machines it covers are not
// memory constrained anyway.
func GetSystemMemory() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	const assumedTotalMB = 8192
	usedMB := m.Sys / (1024 * 1024)
	availMB := uint64(assumedTotalMB)
	if usedMB < assumedTotalMB {
		availMB = assumedTotalMB - usedMB
	}

	return MemorySnapshot{
		Timestamp:   time.Now(),
		TotalMB:     assumedTotalMB,
		AvailableMB: availMB,
	}
}
