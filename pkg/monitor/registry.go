package monitor

import (
	"fmt"
	"sync"

	"github.com/bft-labs/appstate/internal/domain"
)

// Registry is a table of monitors keyed by ID, kept in registration order.
type Registry struct {
	mu       sync.RWMutex
	monitors []Monitor
	byID     map[string]Monitor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Monitor)}
}

// Register adds m. IDs must be unique.
func (r *Registry) Register(m Monitor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := m.ID()
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("register %q: %w", id, domain.ErrDuplicateMonitor)
	}
	r.byID[id] = m
	r.monitors = append(r.monitors, m)
	return nil
}

// Lookup returns the monitor registered under id.
func (r *Registry) Lookup(id string) (Monitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	return m, ok
}

// SetEnabled enables or disables the monitor registered under id.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	m, ok := r.Lookup(id)
	if !ok {
		return fmt.Errorf("enable %q: %w", id, domain.ErrUnknownMonitor)
	}
	m.SetEnabled(enabled)
	return nil
}

// IDs returns the registered IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.monitors))
	for _, m := range r.monitors {
		ids = append(ids, m.ID())
	}
	return ids
}

// AddContextualInfo lets every enabled monitor contribute to event, in
// registration order.
//
// The registry lock is only taken to copy the table, so a monitor may call
// back into the registry.
func (r *Registry) AddContextualInfo(event *Event) {
	r.mu.RLock()
	monitors := append([]Monitor(nil), r.monitors...)
	r.mu.RUnlock()

	for _, m := range monitors {
		if m.IsEnabled() {
			m.AddContextualInfoToEvent(event)
		}
	}
}
