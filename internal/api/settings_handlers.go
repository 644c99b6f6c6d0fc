package api

import (
	"errors"
	"net/http"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/service/settings"
)

// GetSMTP handles GET /api/settings/smtp. The password is never returned.
func (h *Handlers) GetSMTP(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.Get(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, cfg.Redacted())
}

// SaveSMTP handles PUT /api/settings/smtp
func (h *Handlers) SaveSMTP(w http.ResponseWriter, r *http.Request) {
	var cfg domain.SmtpConfig
	if !httputil.Decode(w, r, &cfg) {
		return
	}
	saved, err := h.settings.Save(r.Context(), cfg)
	if errors.Is(err, settings.ErrInvalidEncryption) || errors.Is(err, settings.ErrInvalidPort) {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, saved.Redacted())
}

// TestSMTP handles POST /api/settings/smtp/test. The outcome is always in
// the body; only a dropped request yields an error status.
func (h *Handlers) TestSMTP(w http.ResponseWriter, r *http.Request) {
	var cfg domain.SmtpConfig
	if !httputil.Decode(w, r, &cfg) {
		return
	}
	res, err := h.settings.TestConnection(r.Context(), cfg)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, res)
}
