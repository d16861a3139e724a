// Package render provides the hand-off primitive between arbitrary producer
// goroutines and the single render thread that owns all presentation
// buffers.
package render

import "sync"

// Dispatcher is a coalescing task queue. Producers post keyed tasks from any
// goroutine; the render loop drains once per frame. Posting under a key that
// already has a pending task replaces it, so a render thread that falls
// behind only ever sees the latest request per key instead of a growing
// backlog.
type Dispatcher struct {
	mu      sync.Mutex
	pending map[any]func()
	order   []any

	coalesced uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{pending: make(map[any]func())}
}

// Post schedules task under key. Safe from any goroutine. If a task for the
// same key is already pending it is replaced in place, keeping the key's
// original position in the drain order.
func (d *Dispatcher) Post(key any, task func()) {
	d.mu.Lock()
	if _, exists := d.pending[key]; exists {
		d.coalesced++
	} else {
		d.order = append(d.order, key)
	}
	d.pending[key] = task
	d.mu.Unlock()
}

// Drain runs every pending task in post order and returns how many ran.
// Must only be called from the render thread. Tasks posted while Drain is
// running land in the next drain.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	if len(d.order) == 0 {
		d.mu.Unlock()
		return 0
	}
	pending := d.pending
	order := d.order
	d.pending = make(map[any]func())
	d.order = nil
	d.mu.Unlock()

	for _, key := range order {
		pending[key]()
	}
	return len(order)
}

// Len reports how many tasks are currently pending.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// Coalesced reports how many posts replaced an already-pending task, i.e.
// how many frames the render thread never had to copy because a newer one
// had already arrived.
func (d *Dispatcher) Coalesced() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.coalesced
}
