// Package layout maps named rectangular slots to the widgets presented in
// them. The theme layer defines the slots; screens attach and detach
// widgets as the skin changes which region hosts video.
package layout

import (
	"fmt"
	"log"
	"sync"

	"github.com/veandco/go-sdl2/sdl"
)

// Widget is anything drawable into a slot rectangle on the render thread.
type Widget interface {
	Draw(renderer *sdl.Renderer, target sdl.Rect) error
}

// Registry holds slot geometry and widget attachments. Safe for concurrent
// use; Draw must run on the render thread.
type Registry struct {
	mu       sync.RWMutex
	slots    map[string]sdl.Rect
	order    []string
	attached map[string]Widget
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots:    make(map[string]sdl.Rect),
		attached: make(map[string]Widget),
	}
}

// DefineSlot declares or moves a named slot. Zero-sized slots are legal:
// they suppress presentation of whatever is attached to them.
func (r *Registry) DefineSlot(name string, rect sdl.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slots[name]; !exists {
		r.order = append(r.order, name)
	}
	r.slots[name] = rect
}

// Slot returns a slot's rectangle.
func (r *Registry) Slot(name string) (sdl.Rect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rect, ok := r.slots[name]
	return rect, ok
}

// Attach hosts a widget in a slot, replacing any previous occupant.
// Unknown slots are an error; attaching to a zero-sized slot is not (the
// widget is simply not presented until the slot grows).
func (r *Registry) Attach(w Widget, slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rect, ok := r.slots[slot]
	if !ok {
		return fmt.Errorf("attach: unknown slot %q", slot)
	}
	if rect.W <= 0 || rect.H <= 0 {
		log.Printf("Registry.Attach: slot %q is zero-sized, presentation suppressed", slot)
	}
	r.attached[slot] = w
	return nil
}

// Detach removes a widget from a slot. Detaching a widget that is not the
// current occupant is a no-op.
func (r *Registry) Detach(w Widget, slot string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attached[slot] == w {
		delete(r.attached, slot)
	}
}

// Draw renders every attached widget into its slot, in slot definition
// order. Zero-sized slots are skipped.
func (r *Registry) Draw(renderer *sdl.Renderer) error {
	r.mu.RLock()
	type entry struct {
		w    Widget
		rect sdl.Rect
	}
	entries := make([]entry, 0, len(r.attached))
	for _, name := range r.order {
		w, ok := r.attached[name]
		if !ok {
			continue
		}
		rect := r.slots[name]
		if rect.W <= 0 || rect.H <= 0 {
			continue
		}
		entries = append(entries, entry{w: w, rect: rect})
	}
	r.mu.RUnlock()

	for _, e := range entries {
		if err := e.w.Draw(renderer, e.rect); err != nil {
			return err
		}
	}
	return nil
}
