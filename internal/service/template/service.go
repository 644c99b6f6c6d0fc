package template

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/mailing"
)

// Service implements template storage and preview rendering.
type Service struct {
	repo     Repository
	renderer *mailing.TemplateService
	now      func() time.Time
}

// NewService creates a template service.
func NewService(repo Repository, renderer *mailing.TemplateService) *Service {
	return &Service{repo: repo, renderer: renderer, now: time.Now}
}

// Preview is a template rendered for one contact.
type Preview struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// List returns all templates.
func (s *Service) List(ctx context.Context) ([]domain.EmailTemplate, error) {
	return s.repo.List(ctx)
}

// Get returns one template by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.EmailTemplate, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return domain.EmailTemplate{}, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.EmailTemplate{}, ErrNotFound
}

// Save inserts or replaces a template by ID and stamps LastModified.
// A template without an ID gets a new one.
func (s *Service) Save(ctx context.Context, t domain.EmailTemplate) (domain.EmailTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return domain.EmailTemplate{}, ErrNameMissing
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.LastModified = s.now().UTC()

	err := s.repo.Update(ctx, func(list []domain.EmailTemplate) ([]domain.EmailTemplate, error) {
		for i := range list {
			if list[i].ID == t.ID {
				list[i] = t
				return list, nil
			}
		}
		return append(list, t), nil
	})
	if err != nil {
		return domain.EmailTemplate{}, err
	}
	s.renderer.ClearCache()
	return t, nil
}

// Delete removes a template by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Update(ctx, func(list []domain.EmailTemplate) ([]domain.EmailTemplate, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return err
	}
	s.renderer.ClearCache()
	return nil
}

// Render personalises t for c. On a template syntax error the raw source is
// used so a broken template still sends.
func (s *Service) Render(t domain.EmailTemplate, c domain.Contact) Preview {
	vars := mailing.ContactVars(c)
	subject, _ := s.renderer.Render(mailing.CacheKey(t, "subject"), t.Subject, vars)
	body, _ := s.renderer.Render(mailing.CacheKey(t, "html"), t.HTMLContent, vars)
	text, err := mailing.PlainText(body)
	if err != nil {
		text = ""
	}
	return Preview{Subject: subject, HTML: body, Text: text}
}

// Preview loads a template and renders it for c.
func (s *Service) Preview(ctx context.Context, id string, c domain.Contact) (Preview, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Preview{}, err
	}
	return s.Render(t, c), nil
}

// RenderMessage renders t for c as a send-ready subject, HTML body and
// plain-text alternative.
func (s *Service) RenderMessage(t domain.EmailTemplate, c domain.Contact) (subject, html, text string) {
	p := s.Render(t, c)
	return p.Subject, p.HTML, p.Text
}
