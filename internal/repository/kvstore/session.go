package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/mailflow/internal/storage"
)

type authFlag struct {
	LoggedInAt time.Time `json:"loggedInAt"`
}

// SessionRepo stores the single "logged in" flag.
type SessionRepo struct {
	kv storage.KV
}

// NewSessionRepo creates a SessionRepo.
func NewSessionRepo(kv storage.KV) *SessionRepo {
	return &SessionRepo{kv: kv}
}

// Set raises the flag.
func (r *SessionRepo) Set(ctx context.Context, at time.Time) error {
	if err := r.kv.Put(ctx, storage.KeyAuthFlag, authFlag{LoggedInAt: at.UTC()}); err != nil {
		return fmt.Errorf("saving auth flag: %w", err)
	}
	return nil
}

// Clear lowers the flag.
func (r *SessionRepo) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, storage.KeyAuthFlag); err != nil {
		return fmt.Errorf("clearing auth flag: %w", err)
	}
	return nil
}

// IsSet reports whether the flag is raised.
func (r *SessionRepo) IsSet(ctx context.Context) (bool, error) {
	var flag authFlag
	found, err := r.kv.Get(ctx, storage.KeyAuthFlag, &flag)
	if err != nil {
		return false, fmt.Errorf("loading auth flag: %w", err)
	}
	return found, nil
}
