package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"signalering/internal/signalering/metrics"
	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	dErrors "signalering/pkg/domain-errors"
	"signalering/pkg/requestcontext"
)

const (
	defaultWorkers  = 4
	defaultClaimTTL = 15 * time.Minute
)

// Engine scans deadlines, mails each owner at most once per deadline
// occurrence and corrects the ledger when deadlines move.
type Engine struct {
	scanner       CandidateScanner
	settings      ports.SettingsStore
	ledger        ports.SentLedger
	notifications ports.NotificationStore
	mailer        Mailer
	publisher     ports.ChangePublisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	workers       int
	claimTTL      time.Duration
}

type EngineOption func(*Engine)

func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithEnginePublisher(p ports.ChangePublisher) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithWorkers bounds how many candidates of one run are dispatched at once.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClaimTTL sets how long an unconfirmed ledger claim blocks other dispatchers.
func WithClaimTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		if ttl > 0 {
			e.claimTTL = ttl
		}
	}
}

func NewEngine(
	scanner CandidateScanner,
	settings ports.SettingsStore,
	ledger ports.SentLedger,
	notifications ports.NotificationStore,
	mailer Mailer,
	opts ...EngineOption,
) (*Engine, error) {
	if scanner == nil {
		return nil, errors.New("candidate scanner is required")
	}
	if settings == nil {
		return nil, errors.New("settings store is required")
	}
	if ledger == nil {
		return nil, errors.New("sent ledger is required")
	}
	if notifications == nil {
		return nil, errors.New("notification store is required")
	}
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	e := &Engine{
		scanner:       scanner,
		settings:      settings,
		ledger:        ledger,
		notifications: notifications,
		mailer:        mailer,
		publisher:     nopPublisher{},
		logger:        slog.Default(),
		tracer:        otel.Tracer("signalering/dispatch"),
		workers:       defaultWorkers,
		claimTTL:      defaultClaimTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run dispatches case deadlines and then task deadlines with one clock. The
// two runs are independent: a failed case run still lets tasks dispatch, and
// the errors of both are joined.
func (e *Engine) Run(ctx context.Context) ([]*Report, error) {
	ctx = requestcontext.EnsureTime(ctx)
	var reports []*Report
	cases, caseErr := e.RunCases(ctx)
	if cases != nil {
		reports = append(reports, cases)
	}
	tasks, taskErr := e.RunTasks(ctx)
	if tasks != nil {
		reports = append(reports, tasks)
	}
	return reports, errors.Join(caseErr, taskErr)
}

// RunCases dispatches CASE_DUE_SOON for every case type with a configured
// window, then removes ledger entries of cases whose deadline moved out.
func (e *Engine) RunCases(ctx context.Context) (*Report, error) {
	ctx = requestcontext.EnsureTime(ctx)
	ctx, span := e.tracer.Start(ctx, "signalering.run_cases")
	defer span.End()
	started := time.Now()
	runID := requestcontext.RunID(ctx)
	t := newTally(runID, models.KindCaseDueSoon)

	windows, err := e.scanner.CaseTypeWindows(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "listing case type windows")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list case type windows")
	}

	for _, w := range windows {
		for _, detail := range models.DeadlineDetails() {
			days := w.Days(detail)
			if days == nil {
				continue
			}
			candidates, err := e.scanner.CasesInWindow(ctx, w.CaseTypeID, detail, *days)
			if err != nil {
				e.logger.ErrorContext(ctx, "case candidate query failed",
					"run_id", runID, "case_type", w.CaseTypeID, "detail", detail, "error", err)
				t.failed()
				continue
			}
			if err := e.dispatchAll(ctx, t, models.KindCaseDueSoon, detail, candidates); err != nil {
				return t.result(), err
			}
		}
	}

	for _, w := range windows {
		for _, detail := range models.DeadlineDetails() {
			days := w.Days(detail)
			if days == nil {
				continue
			}
			beyond, err := e.scanner.CasesBeyondWindow(ctx, w.CaseTypeID, detail, *days)
			if err != nil {
				e.logger.ErrorContext(ctx, "case correction query failed",
					"run_id", runID, "case_type", w.CaseTypeID, "detail", detail, "error", err)
				t.failed()
				continue
			}
			e.correct(ctx, t, models.KindCaseDueSoon, detail, beyond)
		}
	}

	report := t.result()
	e.finish(ctx, span, "cases", started, report)
	return report, nil
}

// RunTasks dispatches TASK_OVERDUE for open tasks due today or earlier, then
// removes ledger entries of tasks whose due date moved into the future.
func (e *Engine) RunTasks(ctx context.Context) (*Report, error) {
	ctx = requestcontext.EnsureTime(ctx)
	ctx, span := e.tracer.Start(ctx, "signalering.run_tasks")
	defer span.End()
	started := time.Now()
	runID := requestcontext.RunID(ctx)
	t := newTally(runID, models.KindTaskOverdue)

	due, err := e.scanner.TasksDueNow(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "finding overdue tasks")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find overdue tasks")
	}
	if err := e.dispatchAll(ctx, t, models.KindTaskOverdue, models.DetailTargetDate, due); err != nil {
		return t.result(), err
	}

	later, err := e.scanner.TasksDueLater(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "task correction query failed", "run_id", runID, "error", err)
		t.failed()
	} else {
		e.correct(ctx, t, models.KindTaskOverdue, models.DetailTargetDate, later)
	}

	report := t.result()
	e.finish(ctx, span, "tasks", started, report)
	return report, nil
}

// dispatchAll fans candidates out over the worker pool. Candidate failures are
// counted and logged; only cancellation of ctx ends the batch early.
func (e *Engine) dispatchAll(ctx context.Context, t *tally, kind models.Kind, detail models.Detail, candidates []models.Candidate) error {
	t.candidates(len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, c := range candidates {
		if gctx.Err() != nil {
			break
		}
		c := c
		g.Go(func() error {
			e.dispatch(gctx, t, kind, detail, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Engine) dispatch(ctx context.Context, t *tally, kind models.Kind, detail models.Detail, c models.Candidate) {
	runID := requestcontext.RunID(ctx)
	log := e.logger.With("run_id", runID, "kind", kind, "detail", detail, "subject_id", c.SubjectID, "target_id", c.OwnerID)

	if c.OwnerID == "" {
		e.skip(t, kind, models.SkipUnassigned)
		return
	}

	settings, err := e.settings.Find(ctx, kind, models.TargetUser, c.OwnerID)
	if err != nil {
		log.ErrorContext(ctx, "loading settings failed", "error", err)
		t.failed()
		return
	}
	if !settings.MailEnabled() {
		e.skip(t, kind, models.SkipMailDisabled)
		return
	}

	now := requestcontext.Now(ctx)
	cutoff := now.Add(-e.claimTTL)
	n := &models.Notification{
		Kind:        kind,
		Detail:      detail,
		SubjectType: kind.SubjectType(),
		SubjectID:   c.SubjectID,
		TargetType:  models.TargetUser,
		TargetID:    c.OwnerID,
		Timestamp:   now,
	}
	key := models.SentKeyFor(n)

	exists, err := e.ledger.Exists(ctx, key, cutoff)
	if err != nil {
		log.ErrorContext(ctx, "checking sent ledger failed", "error", err)
		t.failed()
		return
	}
	if exists {
		e.skip(t, kind, models.SkipAlreadySent)
		return
	}

	mail, reason, err := e.mailer.Compose(ctx, n)
	if err != nil {
		log.ErrorContext(ctx, "composing mail failed", "error", err)
		t.failed()
		return
	}
	if mail == nil {
		if reason == models.SkipNoAddress {
			log.WarnContext(ctx, "no mail address for target")
		}
		e.skip(t, kind, reason)
		return
	}

	claimed, err := e.ledger.Claim(ctx, key, now, cutoff)
	if err != nil {
		log.ErrorContext(ctx, "claiming sent ledger failed", "error", err)
		t.failed()
		return
	}
	if !claimed {
		e.skip(t, kind, models.SkipAlreadySent)
		return
	}

	if err := e.mailer.Send(ctx, mail); err != nil {
		log.ErrorContext(ctx, "sending mail failed", "error", err)
		if releaseErr := e.ledger.Release(ctx, key); releaseErr != nil {
			log.ErrorContext(ctx, "releasing ledger claim failed", "error", releaseErr)
		}
		t.failed()
		if e.metrics != nil {
			e.metrics.IncrementMailsFailed(kind)
		}
		return
	}

	if err := e.ledger.Confirm(ctx, key, now); err != nil {
		// the claim stays unconfirmed and expires, so a later run may send again
		log.ErrorContext(ctx, "confirming sent ledger failed", "error", err)
	}
	t.sent()
	if e.metrics != nil {
		e.metrics.IncrementMailsSent(kind, detail)
	}

	if err := e.notifications.Upsert(ctx, n); err != nil {
		log.ErrorContext(ctx, "storing live notification failed", "error", err)
		return
	}
	e.publish(ctx, models.ChangeEvent{
		Type:       models.ChangeUpserted,
		TargetType: n.TargetType,
		TargetID:   n.TargetID,
		Kind:       n.Kind,
		SubjectID:  n.SubjectID,
		At:         now,
	})
}

// correct deletes the ledger entry of every owned candidate unconditionally;
// deleting an absent entry is a no-op.
func (e *Engine) correct(ctx context.Context, t *tally, kind models.Kind, detail models.Detail, candidates []models.Candidate) {
	removed := 0
	for _, c := range candidates {
		if c.OwnerID == "" {
			continue
		}
		key := models.SentKey{
			TargetType: models.TargetUser,
			TargetID:   c.OwnerID,
			Kind:       kind,
			SubjectID:  c.SubjectID,
			Detail:     detail,
		}
		deleted, err := e.ledger.Delete(ctx, key)
		if err != nil {
			e.logger.ErrorContext(ctx, "correcting sent ledger failed",
				"run_id", requestcontext.RunID(ctx), "kind", kind, "subject_id", c.SubjectID, "error", err)
			t.failed()
			continue
		}
		if deleted {
			removed++
		}
	}
	if removed == 0 {
		return
	}
	t.corrected(removed)
	if e.metrics != nil {
		e.metrics.AddCorrections(kind, removed)
	}
	e.logger.InfoContext(ctx, "sent records corrected",
		"run_id", requestcontext.RunID(ctx), "kind", kind, "detail", detail, "count", removed)
}

func (e *Engine) skip(t *tally, kind models.Kind, reason models.SkipReason) {
	t.skipped(reason)
	if e.metrics != nil {
		e.metrics.IncrementSkipped(kind, reason)
	}
}

func (e *Engine) publish(ctx context.Context, event models.ChangeEvent) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "publishing change event failed",
			"target_id", event.TargetID, "error", err)
	}
}

func (e *Engine) finish(ctx context.Context, span trace.Span, run string, started time.Time, report *Report) {
	span.SetAttributes(
		attribute.String("signalering.run_id", report.RunID),
		attribute.Int("signalering.candidates", report.Candidates),
		attribute.Int("signalering.sent", report.Sent),
		attribute.Int("signalering.failed", report.Failed),
		attribute.Int("signalering.corrected", report.Corrected),
	)
	if e.metrics != nil {
		e.metrics.ObserveRun(run, started)
	}
	e.logger.InfoContext(ctx, "dispatch run finished",
		"run_id", report.RunID,
		"run", run,
		"candidates", report.Candidates,
		"sent", report.Sent,
		"failed", report.Failed,
		"corrected", report.Corrected,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}
