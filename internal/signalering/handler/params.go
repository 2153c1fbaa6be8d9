package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"signalering/internal/signalering/models"
	dErrors "signalering/pkg/domain-errors"
	pstrings "signalering/pkg/platform/strings"
)

func targetParams(r *http.Request) (models.TargetType, string, error) {
	targetType, err := models.ParseTargetType(chi.URLParam(r, "targetType"))
	if err != nil {
		return "", "", err
	}
	targetID := chi.URLParam(r, "targetId")
	if targetID == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "target id is required")
	}
	return targetType, targetID, nil
}

// filterParams reads a feed filter for the target in the path. kind may be
// repeated or comma separated.
func filterParams(r *http.Request) (models.NotificationFilter, error) {
	targetType, targetID, err := targetParams(r)
	if err != nil {
		return models.NotificationFilter{}, err
	}
	q := r.URL.Query()
	filter := models.NotificationFilter{
		TargetType:  targetType,
		TargetID:    targetID,
		SubjectType: models.SubjectType(q.Get("subject_type")),
		SubjectID:   q.Get("subject_id"),
	}
	for _, raw := range pstrings.DedupeFold(splitAll(q["kind"])) {
		kind, err := models.ParseKind(raw)
		if err != nil {
			return models.NotificationFilter{}, err
		}
		filter.Kinds = append(filter.Kinds, kind)
	}
	if filter.Limit, err = intParam(r, "limit", 0); err != nil {
		return models.NotificationFilter{}, err
	}
	if filter.Offset, err = intParam(r, "offset", 0); err != nil {
		return models.NotificationFilter{}, err
	}
	return filter, nil
}

func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, name+" must be an integer")
	}
	return v, nil
}
