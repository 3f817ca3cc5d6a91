package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrChordInUse is returned when a chord is already registered to another owner.
var ErrChordInUse = errors.New("hotkey already registered")

// Grabber reserves a chord with the window system so the key press is not
// delivered to the focused application.
type Grabber interface {
	Grab(c Chord) error
	Ungrab(c Chord)
}

// Registry is the table of chords owned by workspaces. At most one owner is
// registered per canonical chord.
type Registry struct {
	mu      sync.Mutex
	grabber Grabber
	logger  *slog.Logger
	owners  map[string]registration
}

type registration struct {
	chord Chord
	owner int
}

// NewRegistry returns an empty registry. grabber may be nil, in which case
// registrations only live in the table.
func NewRegistry(grabber Grabber, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		grabber: grabber,
		logger:  logger,
		owners:  make(map[string]registration),
	}
}

// Register assigns c to owner. Registering the same chord again for the same
// owner is a no-op.
func (r *Registry) Register(c Chord, owner int) error {
	key := c.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.owners[key]; ok {
		if existing.owner == owner {
			return nil
		}
		return fmt.Errorf("%s (owned by workspace %d): %w", key, existing.owner, ErrChordInUse)
	}
	if r.grabber != nil {
		if err := r.grabber.Grab(c); err != nil {
			return fmt.Errorf("grab %s: %w", key, err)
		}
	}
	r.owners[key] = registration{chord: c, owner: owner}
	r.logger.Debug("hotkey registered", "chord", key, "owner", owner)
	return nil
}

// Unregister releases c if it is held by owner.
func (r *Registry) Unregister(c Chord, owner int) {
	key := c.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.owners[key]
	if !ok || existing.owner != owner {
		return
	}
	r.release(key, existing)
}

// Owner returns the owner registered for c.
func (r *Registry) Owner(c Chord) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.owners[c.String()]
	return existing.owner, ok
}

// Reset releases every registration.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, existing := range r.owners {
		r.release(key, existing)
	}
}

// Len returns the number of registered chords.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

func (r *Registry) release(key string, existing registration) {
	if r.grabber != nil {
		r.grabber.Ungrab(existing.chord)
	}
	delete(r.owners, key)
	r.logger.Debug("hotkey unregistered", "chord", key, "owner", existing.owner)
}
