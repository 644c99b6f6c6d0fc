package domain

import (
	"time"
)

// LogStatus enumerates the outcomes recorded in the campaign log.
// Opened and clicked are reserved for real tracking and are never produced
// by the simulated sender.
type LogStatus string

const (
	LogSent    LogStatus = "sent"
	LogFailed  LogStatus = "failed"
	LogOpened  LogStatus = "opened"
	LogClicked LogStatus = "clicked"
)

// CampaignLogEntry is an immutable record of one send attempt. Recipient and
// subject are copies taken at send time so later contact or template edits
// do not rewrite history.
type CampaignLogEntry struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    LogStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CampaignProgress is the transient counter set of one run.
type CampaignProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// RunStatus enumerates the lifecycle states of a campaign run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAbandoned RunStatus = "abandoned"
)

// IsTerminal returns true if the run will not change any more.
func (s RunStatus) IsTerminal() bool {
	return s == RunCompleted || s == RunAbandoned
}

// RunSnapshot is the observable state of a campaign run. Transcript is
// most-recent-first.
type RunSnapshot struct {
	RunID       string           `json:"run_id"`
	Status      RunStatus        `json:"status"`
	TemplateID  string           `json:"template_id"`
	Subject     string           `json:"subject"`
	Progress    CampaignProgress `json:"progress"`
	Transcript  []string         `json:"transcript"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// DashboardStats holds per-status counts over the campaign log.
type DashboardStats struct {
	Sent    int `json:"sent"`
	Opened  int `json:"opened"`
	Clicked int `json:"clicked"`
	Failed  int `json:"failed"`
}

// Sum returns the number of entries counted.
func (s DashboardStats) Sum() int {
	return s.Sent + s.Opened + s.Clicked + s.Failed
}
