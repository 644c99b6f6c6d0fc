package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailflow/internal/assistant"
	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/pkg/logger"
	"github.com/ignite/mailflow/internal/service/template"
)

// sampleContact fills previews when no contact is chosen.
var sampleContact = domain.Contact{ID: "preview", Email: "jane.doe@example.com", Name: "Jane Doe", Company: "Example Ltd"}

// ListTemplates handles GET /api/templates
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.templates.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, list)
}

// GetTemplate handles GET /api/templates/{id}
func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if !h.templateErr(w, err) {
		return
	}
	httputil.OK(w, t)
}

// SaveTemplate handles POST /api/templates. It inserts or replaces by ID.
func (h *Handlers) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t domain.EmailTemplate
	if !httputil.Decode(w, r, &t) {
		return
	}
	saved, err := h.templates.Save(r.Context(), t)
	if errors.Is(err, template.ErrNameMissing) {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, saved)
}

// DeleteTemplate handles DELETE /api/templates/{id}
func (h *Handlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if !h.templateErr(w, h.templates.Delete(r.Context(), chi.URLParam(r, "id"))) {
		return
	}
	httputil.NoContent(w)
}

// PreviewTemplate handles POST /api/templates/{id}/preview
func (h *Handlers) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContactID string `json:"contact_id"`
	}
	if r.ContentLength != 0 && !httputil.Decode(w, r, &req) {
		return
	}

	c := sampleContact
	if req.ContactID != "" {
		found, err := h.contacts.Select(r.Context(), []string{req.ContactID})
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		if len(found) == 0 {
			httputil.NotFound(w, "contact not found")
			return
		}
		c = found[0]
	}

	p, err := h.templates.Preview(r.Context(), chi.URLParam(r, "id"), c)
	if !h.templateErr(w, err) {
		return
	}
	httputil.OK(w, p)
}

// GenerateTemplate handles POST /api/templates/generate
func (h *Handlers) GenerateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string `json:"topic"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Topic == "" {
		httputil.BadRequest(w, "topic is required")
		return
	}

	gen, err := h.assistant.GenerateTemplate(r.Context(), req.Topic)
	if errors.Is(err, assistant.ErrUnavailable) {
		httputil.ServiceUnavailable(w, "API Key missing")
		return
	}
	if err != nil {
		logger.With("api").Error("template generation failed", "error", err)
		httputil.Error(w, http.StatusBadGateway, "Failed to generate template. Check API Key.")
		return
	}
	httputil.OK(w, gen)
}

// SpamScore handles POST /api/templates/{id}/spam-score. A body with
// subject and html analyses an unsaved draft instead of the stored copy.
func (h *Handlers) SpamScore(w http.ResponseWriter, r *http.Request) {
	var draft struct {
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}
	if r.ContentLength != 0 && !httputil.Decode(w, r, &draft) {
		return
	}

	if draft.Subject == "" && draft.HTML == "" {
		t, err := h.templates.Get(r.Context(), chi.URLParam(r, "id"))
		if !h.templateErr(w, err) {
			return
		}
		draft.Subject, draft.HTML = t.Subject, t.HTMLContent
	}

	httputil.OK(w, map[string]string{
		"analysis": h.assistant.AnalyzeSpamScore(r.Context(), draft.Subject, draft.HTML),
	})
}

// templateErr writes the response for err and reports whether the caller
// should continue.
func (h *Handlers) templateErr(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, template.ErrNotFound):
		httputil.NotFound(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
	return false
}
