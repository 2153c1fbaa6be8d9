package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors:
//   - ErrNotFound: the row or external record does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrUnavailable: a backing service (database, relay, broker) cannot be reached
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
