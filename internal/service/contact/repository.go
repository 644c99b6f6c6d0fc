package contact

import (
	"context"

	"github.com/ignite/mailflow/internal/domain"
)

// Repository defines the data access contract for the contact list.
// Implementations must be safe for concurrent use.
type Repository interface {
	// List returns every contact in insertion order, empty when none exist.
	List(ctx context.Context) ([]domain.Contact, error)

	// Save replaces the whole list.
	Save(ctx context.Context, contacts []domain.Contact) error

	// Update runs fn on the current list and persists its result without
	// interleaving with other writers.
	Update(ctx context.Context, fn func([]domain.Contact) ([]domain.Contact, error)) error
}
