package template_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/mailing"
	"github.com/ignite/mailflow/internal/service/template"
)

// memRepo mimics the storage-backed repository, including the default seed.
type memRepo struct {
	mu        sync.Mutex
	stored    bool
	templates []domain.EmailTemplate
}

func (m *memRepo) List(_ context.Context) ([]domain.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stored {
		return []domain.EmailTemplate{domain.DefaultTemplate()}, nil
	}
	return append([]domain.EmailTemplate{}, m.templates...), nil
}

func (m *memRepo) Update(ctx context.Context, fn func([]domain.EmailTemplate) ([]domain.EmailTemplate, error)) error {
	current, _ := m.List(ctx)
	next, err := fn(current)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = true
	m.templates = next
	return nil
}

func newService() *template.Service {
	return template.NewService(&memRepo{}, mailing.NewTemplateService())
}

func TestListSeedsDefault(t *testing.T) {
	svc := newService()
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != domain.DefaultTemplateID {
		t.Fatalf("expected seeded default, got %+v", list)
	}
}

func TestSaveInsertsAndUpdates(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Save(ctx, domain.EmailTemplate{Name: "Welcome", Subject: "Hi", HTMLContent: "<p>Hi</p>"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if created.ID == "" || created.LastModified.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", created)
	}

	created.Subject = "Hello again"
	if _, err := svc.Save(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, _ := svc.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected default + 1, got %d", len(list))
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subject != "Hello again" || got.LastModified.Before(created.LastModified) {
		t.Fatalf("unexpected stored template %+v", got)
	}
}

func TestSaveRequiresName(t *testing.T) {
	_, err := newService().Save(context.Background(), domain.EmailTemplate{Name: "  "})
	if !errors.Is(err, template.ErrNameMissing) {
		t.Fatalf("expected ErrNameMissing, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if err := svc.Delete(ctx, domain.DefaultTemplateID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("deleting the seed must leave an empty list, got %d", len(list))
	}
	if _, err := svc.Get(ctx, domain.DefaultTemplateID); !errors.Is(err, template.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, template.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPreviewPersonalises(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	saved, _ := svc.Save(ctx, domain.EmailTemplate{
		Name:        "Personal",
		Subject:     "News for {{ company | default: \"you\" }}",
		HTMLContent: "<p>Hello {{ name | default: \"there\" }} ({{ email }})</p>",
	})

	p, err := svc.Preview(ctx, saved.ID, domain.Contact{Email: "ann@acme.io", Name: "Ann", Company: "Acme"})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if p.Subject != "News for Acme" {
		t.Fatalf("subject = %q", p.Subject)
	}
	if p.HTML != "<p>Hello Ann (ann@acme.io)</p>" {
		t.Fatalf("html = %q", p.HTML)
	}
	if !strings.Contains(p.Text, "Hello Ann") {
		t.Fatalf("text = %q", p.Text)
	}

	p, _ = svc.Preview(ctx, saved.ID, domain.Contact{Email: "x@y.z"})
	if p.Subject != "News for you" {
		t.Fatalf("default filter not applied: %q", p.Subject)
	}
}

func TestPreviewUnknownTemplate(t *testing.T) {
	_, err := newService().Preview(context.Background(), "nope", domain.Contact{})
	if !errors.Is(err, template.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAndDeleteDropCompiledTemplates(t *testing.T) {
	renderer := mailing.NewTemplateService()
	svc := template.NewService(&memRepo{}, renderer)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.EmailTemplate{Name: "Cached", Subject: "Hi {{ name }}", HTMLContent: "<p>{{ email }}</p>"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.Preview(ctx, saved.ID, domain.Contact{Email: "a@b.c", Name: "A"}); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if renderer.Cached() == 0 {
		t.Fatal("expected compiled templates after preview")
	}

	saved.Subject = "Hello {{ name }}"
	if _, err := svc.Save(ctx, saved); err != nil {
		t.Fatalf("update: %v", err)
	}
	if n := renderer.Cached(); n != 0 {
		t.Fatalf("save left %d compiled templates", n)
	}

	if _, err := svc.Preview(ctx, saved.ID, domain.Contact{Name: "A"}); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := renderer.Cached(); n != 0 {
		t.Fatalf("delete left %d compiled templates", n)
	}
}
