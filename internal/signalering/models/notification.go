package models

import (
	"time"

	dErrors "signalering/pkg/domain-errors"
)

// Notification is a live, UI-facing signal. At most one row exists per
// (kind, detail, subject id, target id); a re-occurrence replaces the timestamp.
type Notification struct {
	Kind        Kind        `json:"kind"`
	Detail      Detail      `json:"detail,omitempty"`
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   string      `json:"subject_id"`
	TargetType  TargetType  `json:"target_type"`
	TargetID    string      `json:"target_id"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NotificationKey identifies the single live row a notification replaces.
type NotificationKey struct {
	Kind      Kind
	Detail    Detail
	SubjectID string
	TargetID  string
}

func (n *Notification) Key() NotificationKey {
	return NotificationKey{Kind: n.Kind, Detail: n.Detail, SubjectID: n.SubjectID, TargetID: n.TargetID}
}

// Validate enforces the notification invariants.
func (n *Notification) Validate() error {
	if !n.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid notification kind: "+string(n.Kind))
	}
	if !n.Detail.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid notification detail: "+string(n.Detail))
	}
	if n.Detail != DetailNone && !n.Kind.IsDeadline() {
		return dErrors.New(dErrors.CodeValidation, "detail is only allowed for deadline notifications")
	}
	if n.Kind.IsDeadline() && n.Detail == DetailNone {
		return dErrors.New(dErrors.CodeValidation, "deadline notifications require a detail")
	}
	if n.SubjectType != n.Kind.SubjectType() {
		return dErrors.New(dErrors.CodeValidation, "subject type "+string(n.SubjectType)+" does not match kind "+string(n.Kind))
	}
	if n.SubjectID == "" {
		return dErrors.New(dErrors.CodeValidation, "subject id is required")
	}
	if !n.TargetType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid target type: "+string(n.TargetType))
	}
	if n.TargetID == "" {
		return dErrors.New(dErrors.CodeValidation, "target id is required")
	}
	if n.Timestamp.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "timestamp is required")
	}
	return nil
}

// NotificationFilter selects live notifications. Zero fields do not filter.
// Results are ordered by timestamp, newest first.
type NotificationFilter struct {
	Kinds       []Kind
	SubjectType SubjectType
	SubjectID   string
	TargetType  TargetType
	TargetID    string
	Limit       int
	Offset      int
}

// Matches reports whether n passes the filter, ignoring pagination.
func (f NotificationFilter) Matches(n *Notification) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if k == n.Kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SubjectType != "" && f.SubjectType != n.SubjectType {
		return false
	}
	if f.SubjectID != "" && f.SubjectID != n.SubjectID {
		return false
	}
	if f.TargetType != "" && f.TargetType != n.TargetType {
		return false
	}
	if f.TargetID != "" && f.TargetID != n.TargetID {
		return false
	}
	return true
}

// HasTarget reports whether the filter is scoped to one recipient.
func (f NotificationFilter) HasTarget() bool {
	return f.TargetType != "" && f.TargetID != ""
}

// ChangeType names what happened to a target's live notifications.
type ChangeType string

const (
	ChangeUpserted ChangeType = "notification_upserted"
	ChangeDeleted  ChangeType = "notifications_deleted"
)

// ChangeEvent tells UI subscribers that a target's feed changed.
type ChangeEvent struct {
	Type       ChangeType `json:"type"`
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id"`
	Kind       Kind       `json:"kind,omitempty"`
	SubjectID  string     `json:"subject_id,omitempty"`
	Count      int        `json:"count,omitempty"`
	At         time.Time  `json:"at"`
}
