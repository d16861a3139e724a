package ffmpeg

/*
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	gopointer "github.com/mattn/go-pointer"
)

// These exports bridge the decode path back into Go. They always run on the
// playback goroutine with b.mu already held, so they touch the Backend
// without further locking.

//export mdGoLock
func mdGoLock(opaque unsafe.Pointer) *C.uint8_t {
	b := gopointer.Restore(opaque).(*Backend)
	buf := b.cb.Lock()
	if len(buf) == 0 {
		// A nil lock means the sink has no buffer; the contract forbids a
		// matching Unlock in that case.
		return nil
	}
	// Pin the buffer for the duration of the C write so handing its
	// address across the cgo boundary is legal.
	b.pinner.Pin(&buf[0])
	b.locked = buf
	return (*C.uint8_t)(unsafe.Pointer(&buf[0]))
}

//export mdGoUnlock
func mdGoUnlock(opaque unsafe.Pointer) {
	b := gopointer.Restore(opaque).(*Backend)
	b.pinner.Unpin()
	b.locked = nil
	b.cb.Unlock()
}

//export mdGoDisplay
func mdGoDisplay(opaque unsafe.Pointer) {
	b := gopointer.Restore(opaque).(*Backend)
	b.cb.Display()
}
