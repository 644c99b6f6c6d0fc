package kvstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/storage"
)

// ContactRepo persists the contact list as one document.
type ContactRepo struct {
	kv storage.KV
	mu sync.Mutex
}

// NewContactRepo creates a ContactRepo.
func NewContactRepo(kv storage.KV) *ContactRepo {
	return &ContactRepo{kv: kv}
}

// List returns all contacts in insertion order. Absent storage yields an empty list.
func (r *ContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	contacts := []domain.Contact{}
	if _, err := r.kv.Get(ctx, storage.KeyContacts, &contacts); err != nil {
		return nil, fmt.Errorf("loading contacts: %w", err)
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return contacts, nil
}

// Save replaces the whole list.
func (r *ContactRepo) Save(ctx context.Context, contacts []domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, contacts)
}

// Update applies fn to the current list and stores the result atomically
// with respect to other callers of this repository.
func (r *ContactRepo) Update(ctx context.Context, fn func([]domain.Contact) ([]domain.Contact, error)) error {
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
	return r.save(ctx, next)
}

func (r *ContactRepo) save(ctx context.Context, contacts []domain.Contact) error {
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	if err := r.kv.Put(ctx, storage.KeyContacts, contacts); err != nil {
		return fmt.Errorf("saving contacts: %w", err)
	}
	return nil
}
