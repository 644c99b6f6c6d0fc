package settings

import (
	"context"

	"github.com/ignite/mailflow/internal/domain"
)

// Repository persists the singleton SMTP configuration.
type Repository interface {
	// Get returns the stored configuration or the default record.
	Get(ctx context.Context) (domain.SmtpConfig, error)
	Save(ctx context.Context, cfg domain.SmtpConfig) error
}
