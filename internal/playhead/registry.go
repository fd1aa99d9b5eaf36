// Package playhead tracks the last reported playback position per clip.
// The presentation layer writes positions as the user scrubs a preview; the
// clip service consults them read-only when setting a trim boundary from the
// current playhead.
package playhead

import "sync"

type Registry struct {
	mu        sync.RWMutex
	positions map[string]float64
}

func NewRegistry() *Registry {
	return &Registry{positions: make(map[string]float64)}
}

func (r *Registry) Report(clipID string, seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[clipID] = seconds
}

// Position returns the last reported position for the clip, if any.
func (r *Registry) Position(clipID string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.positions[clipID]
	return pos, ok
}

// Clear drops the clip's entry, e.g. when the clip is removed.
func (r *Registry) Clear(clipID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.positions, clipID)
}
