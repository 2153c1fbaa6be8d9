package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"signalering/internal/signalering/models"
	"signalering/pkg/platform/httputil"
)

func (h *Handler) handleListSettings(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, err := targetParams(r)
	if err != nil {
		h.fail(w, r, "invalid owner", err)
		return
	}
	list, err := h.settings.List(r.Context(), ownerType, ownerID)
	if err != nil {
		h.fail(w, r, "listing settings failed", err)
		return
	}
	if list == nil {
		list = []*models.Settings{}
	}
	httputil.WriteJSON(w, http.StatusOK, settingsListResponse{Settings: list})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, kind, err := settingsParams(r)
	if err != nil {
		h.fail(w, r, "invalid settings key", err)
		return
	}
	settings, err := h.settings.Get(r.Context(), kind, ownerType, ownerID)
	if err != nil {
		h.fail(w, r, "loading settings failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

// handleSaveSettings stores the flags; all flags off removes the row.
func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, kind, err := settingsParams(r)
	if err != nil {
		h.fail(w, r, "invalid settings key", err)
		return
	}
	req, err := httputil.DecodeJSON[settingsRequest](r)
	if err != nil {
		h.fail(w, r, "invalid settings request", err)
		return
	}
	settings := &models.Settings{Kind: kind, OwnerType: ownerType, OwnerID: ownerID, Mail: req.Mail}
	if err := h.settings.Save(r.Context(), settings); err != nil {
		h.fail(w, r, "saving settings failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleDeleteSettings(w http.ResponseWriter, r *http.Request) {
	ownerType, ownerID, kind, err := settingsParams(r)
	if err != nil {
		h.fail(w, r, "invalid settings key", err)
		return
	}
	if err := h.settings.Delete(r.Context(), kind, ownerType, ownerID); err != nil {
		h.fail(w, r, "deleting settings failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func settingsParams(r *http.Request) (models.TargetType, string, models.Kind, error) {
	ownerType, ownerID, err := targetParams(r)
	if err != nil {
		return "", "", "", err
	}
	kind, err := models.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", "", "", err
	}
	return ownerType, ownerID, kind, nil
}
