package scanner

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalering/internal/signalering/models"
	"signalering/pkg/requestcontext"
)

type call struct {
	op    string
	field models.DeadlineField
	from  time.Time
	to    time.Time
}

// recordingIndex captures the date arguments the scanner computes.
type recordingIndex struct {
	calls []call
}

func (r *recordingIndex) ListCaseTypeWindows(context.Context) ([]models.CaseTypeWindow, error) {
	return nil, nil
}

func (r *recordingIndex) FindCasesWithDeadlineBetween(_ context.Context, _ string, field models.DeadlineField, from, to time.Time) ([]models.Candidate, error) {
	r.calls = append(r.calls, call{op: "between", field: field, from: from, to: to})
	return nil, nil
}

func (r *recordingIndex) FindCasesWithDeadlineAfter(_ context.Context, _ string, field models.DeadlineField, after time.Time) ([]models.Candidate, error) {
	r.calls = append(r.calls, call{op: "after", field: field, from: after})
	return nil, nil
}

func (r *recordingIndex) FindOpenTasksDueBy(_ context.Context, date time.Time) ([]models.Candidate, error) {
	r.calls = append(r.calls, call{op: "due_by", from: date})
	return nil, nil
}

func (r *recordingIndex) FindOpenTasksDueAfter(_ context.Context, date time.Time) ([]models.Candidate, error) {
	r.calls = append(r.calls, call{op: "due_after", from: date})
	return nil, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindows(t *testing.T) {
	index := &recordingIndex{}
	s, err := New(index)
	require.NoError(t, err)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC))

	_, err = s.CasesInWindow(ctx, "X", models.DetailTargetDate, 5)
	require.NoError(t, err)
	_, err = s.CasesBeyondWindow(ctx, "X", models.DetailFatalDate, 5)
	require.NoError(t, err)
	_, err = s.TasksDueNow(ctx)
	require.NoError(t, err)
	_, err = s.TasksDueLater(ctx)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{op: "between", field: models.FieldTargetDate, from: date(2026, 10, 14), to: date(2026, 10, 19)},
		{op: "after", field: models.FieldFatalDate, from: date(2026, 10, 20)},
		{op: "due_by", from: date(2026, 10, 14)},
		{op: "due_after", from: date(2026, 10, 14)},
	}, index.calls)

	_, err = s.CasesInWindow(ctx, "X", models.DetailNone, 5)
	assert.Error(t, err)
}

func TestTodayFollowsLocation(t *testing.T) {
	amsterdam, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	s, err := New(&recordingIndex{}, WithLocation(amsterdam))
	require.NoError(t, err)

	// 22:30 UTC on the 14th is already the 15th in Amsterdam.
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC))
	assert.Equal(t, date(2026, 10, 15), s.Today(ctx))
}

func TestNewRequiresIndex(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
