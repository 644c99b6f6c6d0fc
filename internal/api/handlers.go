package api

import (
	"github.com/ignite/mailflow/internal/assistant"
	"github.com/ignite/mailflow/internal/service/campaign"
	"github.com/ignite/mailflow/internal/service/contact"
	"github.com/ignite/mailflow/internal/service/dashboard"
	"github.com/ignite/mailflow/internal/service/settings"
	"github.com/ignite/mailflow/internal/service/template"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	contacts  *contact.Service
	templates *template.Service
	settings  *settings.Service
	campaigns *campaign.Service
	dashboard *dashboard.Service
	logs      dashboard.LogReader
	assistant *assistant.Assistant
}

// Deps lists the services behind the handlers.
type Deps struct {
	Contacts  *contact.Service
	Templates *template.Service
	Settings  *settings.Service
	Campaigns *campaign.Service
	Dashboard *dashboard.Service
	Logs      dashboard.LogReader
	Assistant *assistant.Assistant
}

// NewHandlers creates a new handlers instance
func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		contacts:  d.Contacts,
		templates: d.Templates,
		settings:  d.Settings,
		campaigns: d.Campaigns,
		dashboard: d.Dashboard,
		logs:      d.Logs,
		assistant: d.Assistant,
	}
}
