package kvstore

import (
	"context"
	"fmt"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/storage"
)

// SettingsRepo persists the singleton SMTP configuration.
type SettingsRepo struct {
	kv storage.KV
}

// NewSettingsRepo creates a SettingsRepo.
func NewSettingsRepo(kv storage.KV) *SettingsRepo {
	return &SettingsRepo{kv: kv}
}

// Get returns the stored configuration or the default record.
func (r *SettingsRepo) Get(ctx context.Context) (domain.SmtpConfig, error) {
	var cfg domain.SmtpConfig
	found, err := r.kv.Get(ctx, storage.KeySMTPConfig, &cfg)
	if err != nil {
		return domain.SmtpConfig{}, fmt.Errorf("loading smtp config: %w", err)
	}
	if !found {
		return domain.DefaultSmtpConfig(), nil
	}
	return cfg, nil
}

// Save overwrites the configuration.
func (r *SettingsRepo) Save(ctx context.Context, cfg domain.SmtpConfig) error {
	if err := r.kv.Put(ctx, storage.KeySMTPConfig, cfg); err != nil {
		return fmt.Errorf("saving smtp config: %w", err)
	}
	return nil
}
