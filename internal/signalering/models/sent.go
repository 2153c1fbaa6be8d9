package models

import (
	"time"
)

// SentKey is the unique key of the dedup ledger. A confirmed record for a key
// is the sole gate preventing a second mail for that deadline occurrence.
type SentKey struct {
	TargetType TargetType
	TargetID   string
	Kind       Kind
	SubjectID  string
	Detail     Detail
}

// SentRecord is a ledger row. Unconfirmed rows are in-flight claims.
type SentRecord struct {
	SentKey
	Timestamp time.Time
	Confirmed bool
}

// LiveAt reports whether the record still gates dispatch: confirmed records
// always do, claims only while younger than claimCutoff.
func (r *SentRecord) LiveAt(claimCutoff time.Time) bool {
	if r == nil {
		return false
	}
	return r.Confirmed || !r.Timestamp.Before(claimCutoff)
}

// SentKeyFor builds the ledger key of a deadline notification.
func SentKeyFor(n *Notification) SentKey {
	return SentKey{
		TargetType: n.TargetType,
		TargetID:   n.TargetID,
		Kind:       n.Kind,
		SubjectID:  n.SubjectID,
		Detail:     n.Detail,
	}
}
