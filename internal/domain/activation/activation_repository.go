package activation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for activations.
type Repository interface {
	// Save persists a new activation.
	Save(ctx context.Context, a *Activation) error

	// Get returns the activation with the given id or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Activation, error)

	// GetPending returns up to limit activations still waiting for a code,
	// oldest first.
	GetPending(ctx context.Context, limit int) ([]*Activation, error)

	// List returns a page of activations, newest first, and the total count.
	List(ctx context.Context, page, limit int) ([]*Activation, int64, error)

	// UpdateStatus persists the status, code and timestamps of an activation.
	UpdateStatus(ctx context.Context, a *Activation) error
}
