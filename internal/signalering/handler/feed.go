package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"signalering/internal/signalering/models"
	dErrors "signalering/pkg/domain-errors"
	"signalering/pkg/platform/httputil"
)

func (h *Handler) handleSignal(w http.ResponseWriter, r *http.Request) {
	req, err := httputil.DecodeJSON[signalRequest](r)
	if err != nil {
		h.fail(w, r, "invalid signal request", err)
		return
	}
	n := req.notification()
	if err := h.feed.Signal(r.Context(), n); err != nil {
		h.fail(w, r, "signal failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, n)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterParams(r)
	if err != nil {
		h.fail(w, r, "invalid notification filter", err)
		return
	}
	list, err := h.feed.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "listing notifications failed", err)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Notifications: list})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	filter, err := filterParams(r)
	if err != nil {
		h.fail(w, r, "invalid notification filter", err)
		return
	}
	removed, err := h.feed.Delete(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "deleting notifications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	targetType, targetID, err := targetParams(r)
	if err != nil {
		h.fail(w, r, "invalid target", err)
		return
	}
	latest, err := h.feed.Latest(r.Context(), targetType, targetID)
	if err != nil {
		h.fail(w, r, "loading latest notification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, latestResponse{Latest: latest})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	targetType, targetID, err := targetParams(r)
	if err != nil {
		h.fail(w, r, "invalid target", err)
		return
	}
	kind, err := models.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		h.fail(w, r, "invalid kind", err)
		return
	}
	count, err := h.feed.Count(r.Context(), kind, targetType, targetID)
	if err != nil {
		h.fail(w, r, "counting notifications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, countResponse{Kind: kind, Count: count})
}

func (h *Handler) handleClearSubject(w http.ResponseWriter, r *http.Request) {
	subjectType := models.SubjectType(chi.URLParam(r, "subjectType"))
	subjectID := chi.URLParam(r, "subjectId")
	if !subjectType.IsValid() {
		h.fail(w, r, "invalid subject", dErrors.New(dErrors.CodeInvalidInput, "invalid subject type: "+string(subjectType)))
		return
	}
	removed, err := h.feed.ClearSubject(r.Context(), subjectType, subjectID)
	if err != nil {
		h.fail(w, r, "clearing subject failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, removedResponse{Removed: removed})
}
