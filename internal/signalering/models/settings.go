package models

import (
	dErrors "signalering/pkg/domain-errors"
)

// Settings is the opt-in configuration of one owner for one kind. Absence of a
// row means "not configured", which currently means no mail.
type Settings struct {
	Kind      Kind       `json:"kind"`
	OwnerType TargetType `json:"owner_type"`
	OwnerID   string     `json:"owner_id"`
	Mail      bool       `json:"mail"`
}

// IsEmpty reports whether every flag is off. Empty settings are deleted, not stored.
func (s *Settings) IsEmpty() bool {
	return !s.Mail
}

// MailEnabled is nil-safe so absent settings read as opted out.
func (s *Settings) MailEnabled() bool {
	return s != nil && s.Mail
}

func (s *Settings) Validate() error {
	if !s.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid settings kind: "+string(s.Kind))
	}
	if !s.OwnerType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid settings owner type: "+string(s.OwnerType))
	}
	if s.OwnerID == "" {
		return dErrors.New(dErrors.CodeValidation, "settings owner id is required")
	}
	return nil
}
