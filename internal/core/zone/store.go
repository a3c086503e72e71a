package zone

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a zone does not exist.
	ErrNotFound = errors.New("zone not found")
	// ErrDuplicate is returned when a zone with the same name already exists.
	ErrDuplicate = errors.New("duplicate zone name")
)

// Store defines the interface for zone persistence.
type Store interface {
	// Create persists a new zone. The store populates ID and CreatedAt
	// if not already set. Returns ErrDuplicate on a name collision.
	Create(ctx context.Context, z *Zone) error

	// Get returns a zone by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (Zone, error)

	// GetByName returns a zone by its unique name.
	// Returns ErrNotFound if missing.
	GetByName(ctx context.Context, name string) (Zone, error)

	// List returns all zones ordered by name.
	List(ctx context.Context) ([]Zone, error)

	// ListEnabled returns enabled zones ordered by name.
	ListEnabled(ctx context.Context) ([]Zone, error)

	// SetEnabled flips the enabled flag.
	// Returns ErrNotFound if the zone does not exist.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// Delete removes a zone and everything it owns (tasks, thresholds,
	// rules, outcomes, history). Returns ErrNotFound if missing.
	Delete(ctx context.Context, id string) error
}
