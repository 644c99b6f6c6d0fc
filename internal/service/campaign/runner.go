package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/logger"
)

// Observer receives a copy of the run state after every change.
// It is called from the run's goroutine and must not block for long.
type Observer func(domain.RunSnapshot)

// Runner executes a single campaign run.
type Runner struct {
	dispatcher Dispatcher
	log        LogWriter
	content    ContentRenderer
	sender     SenderSource
	now        func() time.Time
}

// NewRunner creates a Runner. content and sender may be nil, in which case
// messages carry the raw template and no from-address.
func NewRunner(dispatcher Dispatcher, log LogWriter, content ContentRenderer, sender SenderSource) *Runner {
	return &Runner{
		dispatcher: dispatcher,
		log:        log,
		content:    content,
		sender:     sender,
		now:        time.Now,
	}
}

// Run sends tmpl to every recipient in order and blocks until done.
//
// If ctx is cancelled the run stops before the next recipient (or during
// the current dispatch wait) and the returned snapshot is abandoned.
// Entries already logged stay logged. The returned error is non-nil only
// for invalid input.
func (r *Runner) Run(ctx context.Context, runID string, recipients []domain.Contact, tmpl domain.EmailTemplate, observe Observer) (domain.RunSnapshot, error) {
	if len(recipients) == 0 {
		return domain.RunSnapshot{}, ErrNoRecipients
	}
	if observe == nil {
		observe = func(domain.RunSnapshot) {}
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	snap := domain.RunSnapshot{
		RunID:      runID,
		Status:     domain.RunRunning,
		TemplateID: tmpl.ID,
		Subject:    tmpl.Subject,
		Progress:   domain.CampaignProgress{Total: len(recipients)},
		Transcript: []string{},
		StartedAt:  r.now().UTC(),
	}
	observe(snap)

	from := r.senderConfig(ctx)
	log := logger.With("campaign").With("run_id", runID)
	log.Info("campaign run started", "template_id", tmpl.ID, "recipients", len(recipients))

	for i, c := range recipients {
		if ctx.Err() != nil {
			break
		}
		snap.Progress.Current = i + 1
		observe(snap)

		msg := r.buildMessage(runID, tmpl, c, from)
		err := r.dispatcher.Dispatch(ctx, msg)
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// Interrupted mid-wait: no outcome for this recipient.
			break
		}

		status := domain.LogSent
		if err != nil {
			status = domain.LogFailed
		}
		entry := domain.CampaignLogEntry{
			ID:        uuid.New().String(),
			Recipient: c.Email,
			Subject:   tmpl.Subject,
			Status:    status,
			Timestamp: r.now().UTC(),
		}
		if lerr := r.log.Append(context.WithoutCancel(ctx), entry); lerr != nil {
			log.Error("campaign log append failed", "recipient", c.Email, "error", lerr)
		}

		var line string
		if status == domain.LogSent {
			snap.Progress.Success++
			line = "[SUCCESS] Sent to " + c.Email
		} else {
			snap.Progress.Failed++
			line = "[ERROR] Failed to send to " + c.Email + " (SMTP Timeout)"
			log.Debug("dispatch failed", "recipient", c.Email, "error", err)
		}
		snap.Transcript = prepend(snap.Transcript, line)
		observe(snap)
	}

	done := r.now().UTC()
	snap.CompletedAt = &done
	snap.Status = domain.RunCompleted
	if snap.Progress.Success+snap.Progress.Failed < snap.Progress.Total {
		snap.Status = domain.RunAbandoned
	}
	observe(snap)

	log.Info("campaign run finished",
		"status", snap.Status,
		"success", snap.Progress.Success,
		"failed", snap.Progress.Failed,
		"total", snap.Progress.Total,
	)
	return snap, nil
}

func (r *Runner) senderConfig(ctx context.Context) domain.SmtpConfig {
	if r.sender == nil {
		return domain.SmtpConfig{}
	}
	cfg, err := r.sender.Get(ctx)
	if err != nil {
		logger.Warn("campaign: smtp settings unavailable", "error", err)
		return domain.SmtpConfig{}
	}
	return cfg
}

func (r *Runner) buildMessage(runID string, tmpl domain.EmailTemplate, c domain.Contact, from domain.SmtpConfig) *domain.EmailMessage {
	msg := &domain.EmailMessage{
		ID:          uuid.New().String(),
		RunID:       runID,
		ContactID:   c.ID,
		Email:       c.Email,
		FromName:    from.FromName,
		FromEmail:   from.FromEmail,
		Subject:     tmpl.Subject,
		HTMLContent: tmpl.HTMLContent,
	}
	if r.content != nil {
		msg.Subject, msg.HTMLContent, msg.TextContent = r.content.RenderMessage(tmpl, c)
	}
	return msg
}

// prepend returns a new slice so earlier snapshots keep their transcript.
func prepend(lines []string, line string) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, line)
	return append(out, lines...)
}
