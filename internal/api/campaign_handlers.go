package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/service/campaign"
)

const streamPing = 15 * time.Second

// StartCampaign handles POST /api/campaigns/send
func (h *Handlers) StartCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaign.StartInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	snap, err := h.campaigns.Start(r.Context(), in)
	if err != nil {
		writeCampaignErr(w, err)
		return
	}
	httputil.Accepted(w, snap)
}

// CurrentCampaign handles GET /api/campaigns/current
func (h *Handlers) CurrentCampaign(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.campaigns.Snapshot()
	if !ok {
		httputil.NotFound(w, "no campaign run")
		return
	}
	httputil.OK(w, snap)
}

// StopCampaign handles POST /api/campaigns/current/stop
func (h *Handlers) StopCampaign(w http.ResponseWriter, r *http.Request) {
	snap, err := h.campaigns.Stop(r.Context())
	if err != nil {
		writeCampaignErr(w, err)
		return
	}
	httputil.OK(w, snap)
}

// ResetCampaign handles POST /api/campaigns/current/reset
func (h *Handlers) ResetCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.campaigns.Reset(); err != nil {
		writeCampaignErr(w, err)
		return
	}
	httputil.NoContent(w)
}

// StreamCampaign handles GET /api/campaigns/current/stream as Server-Sent
// Events. Each snapshot is a "progress" event; the stream ends after the
// terminal snapshot.
func (h *Handlers) StreamCampaign(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.InternalError(w, errors.New("streaming unsupported"))
		return
	}

	ch, unsubscribe := h.campaigns.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ping := time.NewTicker(streamPing)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				fmt.Fprint(w, "event: end\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeCampaignErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campaign.ErrNoRecipients):
		httputil.BadRequest(w, "Select at least one contact.")
	case errors.Is(err, campaign.ErrTemplateNotFound):
		httputil.NotFound(w, "Select a template.")
	case errors.Is(err, campaign.ErrAlreadyRunning):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, campaign.ErrNotRunning):
		httputil.Conflict(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
