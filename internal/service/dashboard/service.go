package dashboard

import (
	"context"

	"github.com/ignite/mailflow/internal/domain"
)

// RecentLimit is how many log entries the dashboard lists.
const RecentLimit = 10

// LogReader supplies a snapshot of the campaign log, oldest first.
type LogReader interface {
	All(ctx context.Context) ([]domain.CampaignLogEntry, error)
}

// Dashboard is the overview shown on the landing page.
type Dashboard struct {
	Stats  domain.DashboardStats     `json:"stats"`
	Total  int                       `json:"total"`
	Recent []domain.CampaignLogEntry `json:"recent"`
}

// Service computes dashboard views.
type Service struct {
	logs LogReader
}

// NewService creates a dashboard service.
func NewService(logs LogReader) *Service {
	return &Service{logs: logs}
}

// Aggregate counts entries per status. Entries with an unrecognised status
// are ignored, so the sum never exceeds len(entries).
func Aggregate(entries []domain.CampaignLogEntry) domain.DashboardStats {
	var s domain.DashboardStats
	for _, e := range entries {
		switch e.Status {
		case domain.LogSent:
			s.Sent++
		case domain.LogOpened:
			s.Opened++
		case domain.LogClicked:
			s.Clicked++
		case domain.LogFailed:
			s.Failed++
		}
	}
	return s
}

// Stats aggregates the current log.
func (s *Service) Stats(ctx context.Context) (domain.DashboardStats, error) {
	entries, err := s.logs.All(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return Aggregate(entries), nil
}

// Dashboard returns stats, the log size and the latest entries newest first.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	entries, err := s.logs.All(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Stats:  Aggregate(entries),
		Total:  len(entries),
		Recent: Recent(entries, RecentLimit),
	}, nil
}

// Recent returns up to n entries from the end of entries in reverse order.
// A negative n yields an empty slice.
func Recent(entries []domain.CampaignLogEntry, n int) []domain.CampaignLogEntry {
	n = max(n, 0)
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]domain.CampaignLogEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}
