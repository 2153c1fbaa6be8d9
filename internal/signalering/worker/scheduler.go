package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"signalering/internal/signalering/service"
	"signalering/pkg/requestcontext"
)

type Dispatcher interface {
	Run(ctx context.Context) ([]*service.Report, error)
}

type Purger interface {
	PurgeWithoutEvents(ctx context.Context, olderThanDays int) (int, error)
}

// Scheduler runs dispatch on every tick and retention once per calendar day.
type Scheduler struct {
	dispatcher    Dispatcher
	purger        Purger
	interval      time.Duration
	retentionDays int
	location      *time.Location
	logger        *slog.Logger
	newRunID      func() string

	mu         sync.Mutex
	lastPurged string
}

type Option func(*Scheduler)

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithRunIDs(next func() string) Option {
	return func(s *Scheduler) {
		s.newRunID = next
	}
}

func New(dispatcher Dispatcher, purger Purger, interval time.Duration, retentionDays int, opts ...Option) (*Scheduler, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if purger == nil {
		return nil, errors.New("purger is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", interval)
	}
	s := &Scheduler{
		dispatcher:    dispatcher,
		purger:        purger,
		interval:      interval,
		retentionDays: retentionDays,
		location:      time.UTC,
		logger:        slog.Default(),
		newRunID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run ticks immediately and then every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_ = s.Tick(ctx, time.Now())
	for {
		select {
		case now := <-ticker.C:
			_ = s.Tick(ctx, now)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Tick runs one scheduled pass with now as the fixed clock. Failures are
// logged and returned; a failed dispatch does not skip retention.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	runID := s.newRunID()
	ctx = requestcontext.WithRunID(requestcontext.WithTime(ctx, now), runID)

	var errs []error
	if _, err := s.dispatcher.Run(ctx); err != nil {
		s.logger.ErrorContext(ctx, "scheduled dispatch failed", "run_id", runID, "error", err)
		errs = append(errs, err)
	}

	if day, due := s.purgeDue(now); due {
		if _, err := s.purger.PurgeWithoutEvents(ctx, s.retentionDays); err != nil {
			s.logger.ErrorContext(ctx, "scheduled retention failed", "run_id", runID, "error", err)
			errs = append(errs, err)
		} else {
			s.markPurged(day)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) purgeDue(now time.Time) (string, bool) {
	day := now.In(s.location).Format("2006-01-02")
	s.mu.Lock()
	defer s.mu.Unlock()
	return day, s.lastPurged != day
}

func (s *Scheduler) markPurged(day string) {
	s.mu.Lock()
	s.lastPurged = day
	s.mu.Unlock()
}
