package state

import "context"

// Repository handles state persistence across launches.
// Implementations persist state to disk (or other storage) atomically.
type Repository interface {
	// Load retrieves the last saved state.
	// Returns a zero state and nil error if no state exists.
	// Returns a zero state and an error for read failures or corrupt contents.
	Load(ctx context.Context) (Persisted, error)

	// Save persists the state atomically and durably.
	Save(ctx context.Context, p Persisted) error
}
