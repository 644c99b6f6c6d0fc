package campaign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/distlock"
	"github.com/ignite/mailflow/internal/pkg/logger"
	"github.com/ignite/mailflow/internal/service/template"
)

// subscriberBuffer is the per-subscriber channel size. Slow subscribers
// lose intermediate snapshots, never the final one.
const subscriberBuffer = 16

// LockFactory creates a fresh run lock for each Start.
type LockFactory func() distlock.DistLock

// StartInput selects the recipients and template of a run.
type StartInput struct {
	ContactIDs []string `json:"contact_ids"`
	All        bool     `json:"all"`
	TemplateID string   `json:"template_id"`
}

// Service owns the single active campaign run. All public methods are
// safe for concurrent use.
type Service struct {
	runner    *Runner
	contacts  ContactSource
	templates TemplateSource
	newLock   LockFactory
	lockTTL   time.Duration

	mu      sync.RWMutex
	current *domain.RunSnapshot
	cancel  context.CancelFunc
	done    chan struct{}
	subs    map[int]chan domain.RunSnapshot
	nextSub int
}

// NewService creates a campaign service. A nil newLock guards runs within
// this process only.
func NewService(runner *Runner, contacts ContactSource, templates TemplateSource, newLock LockFactory, lockTTL time.Duration) *Service {
	if newLock == nil {
		key := "campaign-run:" + uuid.New().String()
		newLock = func() distlock.DistLock { return distlock.NewLocalLock(key) }
	}
	return &Service{
		runner:    runner,
		contacts:  contacts,
		templates: templates,
		newLock:   newLock,
		lockTTL:   lockTTL,
		subs:      make(map[int]chan domain.RunSnapshot),
	}
}

// Start validates the input and launches a run in the background. It
// returns the initial snapshot. The run continues after ctx is done; use
// Stop to abandon it.
func (s *Service) Start(ctx context.Context, in StartInput) (domain.RunSnapshot, error) {
	var (
		recipients []domain.Contact
		err        error
	)
	if in.All {
		recipients, err = s.contacts.List(ctx)
	} else {
		recipients, err = s.contacts.Select(ctx, in.ContactIDs)
	}
	if err != nil {
		return domain.RunSnapshot{}, fmt.Errorf("resolving recipients: %w", err)
	}
	if len(recipients) == 0 {
		return domain.RunSnapshot{}, ErrNoRecipients
	}

	tmpl, err := s.templates.Get(ctx, in.TemplateID)
	if errors.Is(err, template.ErrNotFound) {
		return domain.RunSnapshot{}, ErrTemplateNotFound
	}
	if err != nil {
		return domain.RunSnapshot{}, fmt.Errorf("loading template: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && !s.current.Status.IsTerminal() {
		return domain.RunSnapshot{}, ErrAlreadyRunning
	}
	if s.done != nil {
		// The previous run is terminal; let it finish releasing its lock.
		<-s.done
	}
	lock := s.newLock()
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return domain.RunSnapshot{}, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !acquired {
		return domain.RunSnapshot{}, ErrAlreadyRunning
	}

	runID := uuid.New().String()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	initial := domain.RunSnapshot{
		RunID:      runID,
		Status:     domain.RunRunning,
		TemplateID: tmpl.ID,
		Subject:    tmpl.Subject,
		Progress:   domain.CampaignProgress{Total: len(recipients)},
		Transcript: []string{},
		StartedAt:  time.Now().UTC(),
	}
	s.current = &initial
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(runCtx, cancel, s.done, lock, runID, recipients, tmpl)
	return initial, nil
}

func (s *Service) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, lock distlock.DistLock, runID string, recipients []domain.Contact, tmpl domain.EmailTemplate) {
	defer close(done)
	defer cancel()
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("campaign: releasing run lock failed", "run_id", runID, "error", err)
		}
	}()

	stopExtend := s.keepLockAlive(lock)
	defer stopExtend()

	if _, err := s.runner.Run(ctx, runID, recipients, tmpl, s.publish); err != nil {
		logger.Error("campaign run rejected", "run_id", runID, "error", err)
	}
}

// keepLockAlive periodically extends locks that expire, such as Redis locks.
func (s *Service) keepLockAlive(lock distlock.DistLock) func() {
	ext, ok := lock.(interface {
		Extend(ctx context.Context, ttl time.Duration) error
	})
	if !ok || s.lockTTL <= 0 {
		return func() {}
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.lockTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := ext.Extend(context.Background(), s.lockTTL); err != nil {
					logger.Warn("campaign: extending run lock failed", "error", err)
				}
			}
		}
	}()
	return func() { close(stop) }
}

// publish records snap as current and fans it out. Terminal snapshots are
// delivered to every subscriber, whose channels are then closed.
func (s *Service) publish(snap domain.RunSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &snap
	terminal := snap.Status.IsTerminal()
	for id, ch := range s.subs {
		if terminal {
			deliver(ch, snap)
			close(ch)
			delete(s.subs, id)
			continue
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// deliver sends snap, discarding the oldest buffered snapshot if needed.
// Only publish sends on subscriber channels, so this cannot block.
func deliver(ch chan domain.RunSnapshot, snap domain.RunSnapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Snapshot returns the state of the current or most recent run.
func (s *Service) Snapshot() (domain.RunSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.RunSnapshot{}, false
	}
	return *s.current, true
}

// Subscribe streams snapshots of the active run. The current snapshot is
// delivered first. The channel is closed after the terminal snapshot, or
// immediately when no run is active. Call the returned func to stop early.
func (s *Service) Subscribe() (<-chan domain.RunSnapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan domain.RunSnapshot, subscriberBuffer)
	if s.current != nil {
		ch <- *s.current
	}
	if s.current == nil || s.current.Status.IsTerminal() {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Stop abandons the active run and waits for it to wind down or ctx to end.
func (s *Service) Stop(ctx context.Context) (domain.RunSnapshot, error) {
	s.mu.RLock()
	running := s.current != nil && !s.current.Status.IsTerminal()
	cancel, done := s.cancel, s.done
	s.mu.RUnlock()

	if !running {
		return domain.RunSnapshot{}, ErrNotRunning
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return domain.RunSnapshot{}, ctx.Err()
	}
	snap, _ := s.Snapshot()
	return snap, nil
}

// Reset forgets a finished run so a new one starts from a clean slate.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && !s.current.Status.IsTerminal() {
		return ErrAlreadyRunning
	}
	s.current = nil
	return nil
}

// Wait blocks until the active run, if any, has finished.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close abandons any active run and waits for it, for graceful shutdown.
func (s *Service) Close(ctx context.Context) error {
	if _, err := s.Stop(ctx); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	return nil
}
