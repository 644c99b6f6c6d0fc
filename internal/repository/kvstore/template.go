package kvstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/storage"
)

// TemplateRepo persists the template list as one document. When nothing has
// been stored it reports the single seeded default template.
type TemplateRepo struct {
	kv storage.KV
	mu sync.Mutex
}

// NewTemplateRepo creates a TemplateRepo.
func NewTemplateRepo(kv storage.KV) *TemplateRepo {
	return &TemplateRepo{kv: kv}
}

// List returns the stored templates, or the default seed when absent.
func (r *TemplateRepo) List(ctx context.Context) ([]domain.EmailTemplate, error) {
	var templates []domain.EmailTemplate
	found, err := r.kv.Get(ctx, storage.KeyTemplates, &templates)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	if !found {
		return []domain.EmailTemplate{domain.DefaultTemplate()}, nil
	}
	if templates == nil {
		templates = []domain.EmailTemplate{}
	}
	return templates, nil
}

// Update applies fn to the current list and stores the result.
func (r *TemplateRepo) Update(ctx context.Context, fn func([]domain.EmailTemplate) ([]domain.EmailTemplate, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.List(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		next = []domain.EmailTemplate{}
	}
	if err := r.kv.Put(ctx, storage.KeyTemplates, next); err != nil {
		return fmt.Errorf("saving templates: %w", err)
	}
	return nil
}
