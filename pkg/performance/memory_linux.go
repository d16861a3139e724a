//go:build linux

package performance

import (
	"log"
	"syscall"
	"time"
)

// GetSystemMemory reads system-wide memory stats via sysinfo. Available
// memory counts free RAM plus buffers, since the kernel can reclaim the
// latter.
func GetSystemMemory() MemorySnapshot {
	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		log.Printf("GetSystemMemory: sysinfo failed: %v", err)
		return MemorySnapshot{Timestamp: time.Now()}
	}

	unit := uint64(info.Unit)
	totalMB := info.Totalram * unit / (1024 * 1024)
	availMB := (info.Freeram + info.Bufferram) * unit / (1024 * 1024)

	return MemorySnapshot{
		Timestamp:   time.Now(),
		TotalMB:     totalMB,
		AvailableMB: availMB,
	}
}
