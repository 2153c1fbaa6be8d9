// Package scanner turns the run clock and per case-type warning windows into
// candidate queries against the case index.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	"signalering/pkg/requestcontext"
)

// Scanner computes windows and delegates the queries to a CaseIndex.
type Scanner struct {
	index    ports.CaseIndex
	location *time.Location
}

type Option func(*Scanner)

// WithLocation sets the time zone whose calendar date is "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Scanner) {
		if loc != nil {
			s.location = loc
		}
	}
}

func New(index ports.CaseIndex, opts ...Option) (*Scanner, error) {
	if index == nil {
		return nil, errors.New("case index is required")
	}
	s := &Scanner{index: index, location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Today returns the calendar date of the run clock in the scanner's zone as a
// UTC midnight, so date arithmetic never crosses a DST boundary.
func (s *Scanner) Today(ctx context.Context) time.Time {
	local := requestcontext.Now(ctx).In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Scanner) CaseTypeWindows(ctx context.Context) ([]models.CaseTypeWindow, error) {
	return s.index.ListCaseTypeWindows(ctx)
}

// CasesInWindow returns open cases of the type whose deadline lies in
// [today, today+days].
func (s *Scanner) CasesInWindow(ctx context.Context, caseTypeID string, detail models.Detail, days int) ([]models.Candidate, error) {
	field, ok := models.FieldFor(detail)
	if !ok {
		return nil, fmt.Errorf("no deadline field for detail %q", detail)
	}
	today := s.Today(ctx)
	return s.index.FindCasesWithDeadlineBetween(ctx, caseTypeID, field, today, today.AddDate(0, 0, days))
}

// CasesBeyondWindow returns open cases whose deadline is strictly after
// today+days+1, the complement used by the correction sweep.
func (s *Scanner) CasesBeyondWindow(ctx context.Context, caseTypeID string, detail models.Detail, days int) ([]models.Candidate, error) {
	field, ok := models.FieldFor(detail)
	if !ok {
		return nil, fmt.Errorf("no deadline field for detail %q", detail)
	}
	return s.index.FindCasesWithDeadlineAfter(ctx, caseTypeID, field, s.Today(ctx).AddDate(0, 0, days+1))
}

// TasksDueNow returns open tasks due today or earlier.
func (s *Scanner) TasksDueNow(ctx context.Context) ([]models.Candidate, error) {
	return s.index.FindOpenTasksDueBy(ctx, s.Today(ctx))
}

// TasksDueLater returns open tasks due after today.
func (s *Scanner) TasksDueLater(ctx context.Context) ([]models.Candidate, error) {
	return s.index.FindOpenTasksDueAfter(ctx, s.Today(ctx))
}
