package api

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/service/contact"
)

type importResult struct {
	Imported int `json:"imported"`
}

// ListContacts handles GET /api/contacts
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	list, err := h.contacts.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, list)
}

// AddContact handles POST /api/contacts
func (h *Handlers) AddContact(w http.ResponseWriter, r *http.Request) {
	var in contact.AddInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.contacts.Add(r.Context(), in)
	if errors.Is(err, contact.ErrInvalidEmail) {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.Created(w, c)
}

// ClearContacts handles DELETE /api/contacts
func (h *Handlers) ClearContacts(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Clear(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// DeleteContact handles DELETE /api/contacts/{id}
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, contact.ErrNotFound) {
		httputil.NotFound(w, err.Error())
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ImportPaste handles POST /api/contacts/import/paste
func (h *Handlers) ImportPaste(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	n, err := h.contacts.ImportPaste(r.Context(), req.Text)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, importResult{Imported: n})
}

// ImportCSV handles POST /api/contacts/import/csv. The body is either raw
// CSV or a multipart form with the file in the "file" field.
func (h *Handlers) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)

	var src io.Reader = r.Body
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			httputil.BadRequest(w, "missing file field")
			return
		}
		defer file.Close()
		src = file
	}

	n, err := h.contacts.ImportCSV(r.Context(), src)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, importResult{Imported: n})
}
