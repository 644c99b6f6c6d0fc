package contact

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/logger"
)

// Service implements contact list operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a contact service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// AddInput holds the fields of a manually added contact.
type AddInput struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

// List returns all contacts.
func (s *Service) List(ctx context.Context) ([]domain.Contact, error) {
	return s.repo.List(ctx)
}

// Save replaces the list wholesale.
func (s *Service) Save(ctx context.Context, contacts []domain.Contact) error {
	return s.repo.Save(ctx, contacts)
}

// Clear removes every contact.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Save(ctx, []domain.Contact{}); err != nil {
		return err
	}
	logger.Info("contacts cleared")
	return nil
}

// Add appends one active contact. Only a non-empty email is required here;
// bulk imports apply the stricter '@' filter.
func (s *Service) Add(ctx context.Context, in AddInput) (domain.Contact, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return domain.Contact{}, ErrInvalidEmail
	}
	c := s.newContact(email, strings.TrimSpace(in.Name))
	c.Company = strings.TrimSpace(in.Company)

	err := s.repo.Update(ctx, func(list []domain.Contact) ([]domain.Contact, error) {
		return append(list, c), nil
	})
	if err != nil {
		return domain.Contact{}, err
	}
	return c, nil
}

// Delete removes a single contact by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Update(ctx, func(list []domain.Contact) ([]domain.Contact, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}

var pasteSeparators = regexp.MustCompile(`[\n,]+`)

// ImportPaste adds one contact per address in free text. Tokens are split on
// newlines and commas, trimmed, and kept only if they contain '@'.
// Returns the number of contacts added.
func (s *Service) ImportPaste(ctx context.Context, text string) (int, error) {
	var added []domain.Contact
	for _, token := range pasteSeparators.Split(text, -1) {
		email := strings.TrimSpace(token)
		if strings.Contains(email, "@") {
			added = append(added, s.newContact(email, ""))
		}
	}
	return s.appendAll(ctx, added, "paste")
}

// ImportCSV adds one contact per CSV row whose first column contains '@'.
// The optional second column is the name. Rows that do not qualify,
// including a header row, are skipped.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var added []domain.Contact
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("reading csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		email := strings.TrimSpace(record[0])
		if !strings.Contains(email, "@") {
			continue
		}
		var name string
		if len(record) > 1 {
			name = strings.TrimSpace(record[1])
		}
		added = append(added, s.newContact(email, name))
	}
	return s.appendAll(ctx, added, "csv")
}

// Select returns the contacts whose IDs are in ids, in list order.
// Unknown IDs are ignored.
func (s *Service) Select(ctx context.Context, ids []string) ([]domain.Contact, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	selected := make([]domain.Contact, 0, len(ids))
	for _, c := range all {
		if _, ok := wanted[c.ID]; ok {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

func (s *Service) appendAll(ctx context.Context, added []domain.Contact, source string) (int, error) {
	if len(added) == 0 {
		return 0, nil
	}
	err := s.repo.Update(ctx, func(list []domain.Contact) ([]domain.Contact, error) {
		return append(list, added...), nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("contacts imported", "source", source, "count", len(added))
	return len(added), nil
}

func (s *Service) newContact(email, name string) domain.Contact {
	return domain.Contact{
		ID:      uuid.New().String(),
		Email:   email,
		Name:    name,
		Status:  domain.ContactActive,
		AddedAt: s.now().UTC(),
	}
}
