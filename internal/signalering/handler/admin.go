package handler

import (
	"net/http"
	"time"

	dErrors "signalering/pkg/domain-errors"
	"signalering/pkg/platform/httputil"
	"signalering/pkg/requestcontext"
)

// handleRun runs case and task dispatch synchronously. The optional "at"
// query parameter (RFC 3339) replaces the request clock, for replaying a day.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if raw := r.URL.Query().Get("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.fail(w, r, "invalid run clock", dErrors.New(dErrors.CodeInvalidInput, "at must be an RFC 3339 timestamp"))
			return
		}
		ctx = requestcontext.WithTime(ctx, at)
	}

	reports, err := h.dispatcher.Run(ctx)
	if err != nil {
		h.fail(w, r, "manual dispatch run failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, runResponse{
		RunID:   requestcontext.RunID(ctx),
		At:      requestcontext.Now(ctx),
		Reports: reports,
	})
}

func (h *Handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", h.retentionDays)
	if err != nil {
		h.fail(w, r, "invalid purge request", err)
		return
	}
	removed, err := h.purger.PurgeWithoutEvents(r.Context(), days)
	if err != nil {
		h.fail(w, r, "manual purge failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, purgeResponse{Days: days, Removed: removed})
}
