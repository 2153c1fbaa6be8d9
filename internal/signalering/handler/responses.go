package handler

import (
	"time"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/service"
)

type runResponse struct {
	RunID   string            `json:"run_id"`
	At      time.Time         `json:"at"`
	Reports []*service.Report `json:"reports"`
}

type purgeResponse struct {
	Days    int `json:"days"`
	Removed int `json:"removed"`
}

type listResponse struct {
	Notifications []*models.Notification `json:"notifications"`
}

type latestResponse struct {
	Latest *time.Time `json:"latest"`
}

type countResponse struct {
	Kind  models.Kind `json:"kind"`
	Count int         `json:"count"`
}

type removedResponse struct {
	Removed int `json:"removed"`
}

type settingsListResponse struct {
	Settings []*models.Settings `json:"settings"`
}

type signalRequest struct {
	Kind        models.Kind        `json:"kind"`
	SubjectType models.SubjectType `json:"subject_type"`
	SubjectID   string             `json:"subject_id"`
	TargetType  models.TargetType  `json:"target_type"`
	TargetID    string             `json:"target_id"`
	Timestamp   *time.Time         `json:"timestamp,omitempty"`
}

func (r signalRequest) notification() *models.Notification {
	n := &models.Notification{
		Kind:        r.Kind,
		SubjectType: r.SubjectType,
		SubjectID:   r.SubjectID,
		TargetType:  r.TargetType,
		TargetID:    r.TargetID,
	}
	if r.Timestamp != nil {
		n.Timestamp = *r.Timestamp
	}
	return n
}

type settingsRequest struct {
	Mail bool `json:"mail"`
}
