package template

import (
	"context"

	"github.com/ignite/mailflow/internal/domain"
)

// Repository defines the data access contract for templates.
type Repository interface {
	// List returns stored templates, or the seeded default when nothing
	// has ever been stored.
	List(ctx context.Context) ([]domain.EmailTemplate, error)

	// Update runs fn on the current list and persists its result.
	Update(ctx context.Context, fn func([]domain.EmailTemplate) ([]domain.EmailTemplate, error)) error
}
