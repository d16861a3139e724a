package player

import "fmt"

// MediaLoadError reports a source that could not be bound: an empty path or
// a backend that rejected it. A failed load leaves the previously loaded
// media untouched.
type MediaLoadError struct {
	Source string
	Err    error
}

func (e *MediaLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load media: %v", e.Err)
	}
	return fmt.Sprintf("load media %q: %v", e.Source, e.Err)
}

func (e *MediaLoadError) Unwrap() error { return e.Err }

// BackendFault reports a runtime failure from the native backend that is
// independent of this subsystem. Recoverable at the player boundary.
type BackendFault struct {
	Op  string
	Err error
}

func (e *BackendFault) Error() string {
	return fmt.Sprintf("video backend %s: %v", e.Op, e.Err)
}

func (e *BackendFault) Unwrap() error { return e.Err }
