package campaign_test

import (
	"context"
	"sync"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/service/template"
)

// scriptedRand replays a fixed sequence of draws.
type scriptedRand struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

func (s *scriptedRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// outcomes builds a draw sequence for a zero-latency SimulatedDispatcher:
// one latency draw then one outcome draw per recipient.
func outcomes(success ...bool) *scriptedRand {
	r := &scriptedRand{}
	for _, ok := range success {
		draw := 0.05
		if ok {
			draw = 0.95
		}
		r.vals = append(r.vals, 0, draw)
	}
	return r
}

type memLog struct {
	mu      sync.Mutex
	entries []domain.CampaignLogEntry
}

func (m *memLog) Append(_ context.Context, e domain.CampaignLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLog) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type memContacts []domain.Contact

func (m memContacts) List(context.Context) ([]domain.Contact, error) { return m, nil }

func (m memContacts) Select(_ context.Context, ids []string) ([]domain.Contact, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Contact
	for _, c := range m {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

type memTemplates map[string]domain.EmailTemplate

func (m memTemplates) Get(_ context.Context, id string) (domain.EmailTemplate, error) {
	t, ok := m[id]
	if !ok {
		return domain.EmailTemplate{}, template.ErrNotFound
	}
	return t, nil
}

// gateDispatcher blocks every dispatch until its context is cancelled.
type gateDispatcher struct {
	started chan struct{}
}

func newGate() *gateDispatcher { return &gateDispatcher{started: make(chan struct{}, 1)} }

func (g *gateDispatcher) Dispatch(ctx context.Context, _ *domain.EmailMessage) error {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

// recordingDispatcher captures messages and always succeeds.
type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []domain.EmailMessage
}

func (r *recordingDispatcher) Dispatch(_ context.Context, msg *domain.EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *msg)
	return nil
}

type staticSender domain.SmtpConfig

func (s staticSender) Get(context.Context) (domain.SmtpConfig, error) {
	return domain.SmtpConfig(s), nil
}

type upperRenderer struct{}

func (upperRenderer) RenderMessage(t domain.EmailTemplate, c domain.Contact) (string, string, string) {
	return t.Subject + " for " + c.Name, "<p>" + c.Email + "</p>", c.Email
}

func contacts(emails ...string) memContacts {
	out := make(memContacts, len(emails))
	for i, e := range emails {
		out[i] = domain.Contact{ID: "c" + string(rune('0'+i)), Email: e, Status: domain.ContactActive}
	}
	return out
}

var testTemplate = domain.EmailTemplate{ID: "t1", Name: "Launch", Subject: "Big news", HTMLContent: "<p>hi</p>"}
