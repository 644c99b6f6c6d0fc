package campaign

import (
	"context"

	"github.com/ignite/mailflow/internal/domain"
)

// LogWriter appends to the campaign log.
type LogWriter interface {
	Append(ctx context.Context, entry domain.CampaignLogEntry) error
}

// ContactSource resolves recipient IDs to contacts, preserving list order.
type ContactSource interface {
	List(ctx context.Context) ([]domain.Contact, error)
	Select(ctx context.Context, ids []string) ([]domain.Contact, error)
}

// TemplateSource looks templates up by ID.
type TemplateSource interface {
	Get(ctx context.Context, id string) (domain.EmailTemplate, error)
}

// SenderSource supplies the from-address settings.
type SenderSource interface {
	Get(ctx context.Context) (domain.SmtpConfig, error)
}

// ContentRenderer personalises a template for one contact.
type ContentRenderer interface {
	RenderMessage(t domain.EmailTemplate, c domain.Contact) (subject, html, text string)
}
