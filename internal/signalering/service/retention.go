package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"signalering/internal/signalering/metrics"
	"signalering/internal/signalering/ports"
	dErrors "signalering/pkg/domain-errors"
	"signalering/pkg/requestcontext"
)

// Retention purges old live notifications. It has no publisher: retention
// never notifies UI subscribers.
type Retention struct {
	notifications ports.NotificationStore
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

func NewRetention(notifications ports.NotificationStore, logger *slog.Logger, m *metrics.Metrics) (*Retention, error) {
	if notifications == nil {
		return nil, errors.New("notification store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retention{notifications: notifications, logger: logger, metrics: m}, nil
}

// PurgeWithoutEvents deletes every notification older than olderThanDays days
// relative to the run clock in ctx and returns how many were removed.
func (r *Retention) PurgeWithoutEvents(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "retention days must not be negative")
	}
	started := time.Now()
	cutoff := requestcontext.Now(ctx).AddDate(0, 0, -olderThanDays)

	removed, err := r.notifications.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge notifications")
	}
	if r.metrics != nil {
		r.metrics.AddPurged(removed)
		r.metrics.ObserveRun("retention", started)
	}
	r.logger.InfoContext(ctx, "notifications purged",
		"run_id", requestcontext.RunID(ctx), "cutoff", cutoff, "count", removed)
	return removed, nil
}
