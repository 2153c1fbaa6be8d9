package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"signalering/internal/caseindex"
	"signalering/internal/signalering/events"
	"signalering/internal/signalering/mailer"
	"signalering/internal/signalering/mailtemplate"
	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	"signalering/internal/signalering/scanner"
	sentstore "signalering/internal/signalering/store/sent"
	settingsstore "signalering/internal/signalering/store/settings"
	notificationstore "signalering/internal/signalering/store/notification"
	templatestore "signalering/internal/signalering/store/template"
	"signalering/internal/signalering/target"
	"signalering/pkg/requestcontext"
)

var testNow = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSender captures mails and can fail a number of sends first.
type recordingSender struct {
	mu       sync.Mutex
	mails    []models.Mail
	failures int
}

func (r *recordingSender) Send(_ context.Context, m models.Mail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("relay refused")
	}
	r.mails = append(r.mails, m)
	return nil
}

func (r *recordingSender) sent() []models.Mail {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Mail, len(r.mails))
	copy(out, r.mails)
	return out
}

// harness wires the real scanner, stores and mail assembly over an in-memory
// sqlite case index.
type harness struct {
	t             *testing.T
	db            *sqlx.DB
	index         *caseindex.Index
	settings      *settingsstore.InMemoryStore
	ledger        *sentstore.InMemoryLedger
	notifications *notificationstore.InMemoryStore
	templates     *templatestore.InMemoryStore
	sender        *recordingSender
	publisher     *events.Recorder
	scanner       *scanner.Scanner
	mailer        *mailer.Mailer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{
		t:             t,
		db:            db,
		index:         caseindex.New(db),
		settings:      settingsstore.NewInMemory(),
		ledger:        sentstore.NewInMemory(),
		notifications: notificationstore.NewInMemory(),
		templates:     templatestore.NewInMemory(),
		sender:        &recordingSender{},
		publisher:     events.NewRecorder(),
	}
	require.NoError(t, h.index.EnsureSchema(context.Background()))

	h.scanner, err = scanner.New(h.index)
	require.NoError(t, err)
	h.mailer = h.newMailer(h.sender)
	return h
}

func (h *harness) newMailer(sender ports.MailSender) *mailer.Mailer {
	resolver, err := target.New(h.index)
	require.NoError(h.t, err)
	assembler, err := mailtemplate.NewAssembler(h.templates, h.index)
	require.NoError(h.t, err)
	m, err := mailer.New(resolver, assembler, sender, models.Address{Name: "Zaaksysteem", Email: "noreply@gemeente.nl"})
	require.NoError(h.t, err)
	return m
}

func (h *harness) engine(opts ...EngineOption) *Engine {
	return h.engineWith(h.mailer, opts...)
}

func (h *harness) engineWith(m Mailer, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{
		WithEngineLogger(discardLogger()),
		WithEnginePublisher(h.publisher),
	}, opts...)
	e, err := NewEngine(h.scanner, h.settings, h.ledger, h.notifications, m, opts...)
	require.NoError(h.t, err)
	return e
}

func (h *harness) ctx() context.Context {
	ctx := requestcontext.WithTime(context.Background(), testNow)
	return requestcontext.WithRunID(ctx, "run-test")
}

func (h *harness) exec(query string, args ...any) {
	h.t.Helper()
	_, err := h.db.Exec(query, args...)
	require.NoError(h.t, err)
}

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format("2006-01-02")
}

func (h *harness) addUser(id, name, email string) {
	h.exec(`INSERT INTO users (id, display_name, email) VALUES (?, ?, ?)`, id, name, email)
}

func (h *harness) addCaseType(id string, targetDays, fatalDays any) {
	h.exec(`INSERT INTO case_types (id, name, target_date_warning_days, fatal_date_warning_days) VALUES (?, ?, ?, ?)`,
		id, "Type "+id, targetDays, fatalDays)
}

func (h *harness) addCase(id, caseType string, owner any, targetDate, fatalDate any) {
	h.exec(`INSERT INTO cases (id, identification, case_type_id, description, owner_id, target_date, fatal_date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, "ZAAK-"+id, caseType, "Omschrijving "+id, owner, targetDate, fatalDate)
}

func (h *harness) setTargetDate(caseID, date string) {
	h.exec(`UPDATE cases SET target_date = ? WHERE id = ?`, date, caseID)
}

func (h *harness) addTask(id, caseID string, assignee any, dueDate string) {
	h.exec(`INSERT INTO tasks (id, case_id, name, assignee_id, due_date) VALUES (?, ?, ?, ?, ?)`,
		id, caseID, "Taak "+id, assignee, dueDate)
}

func (h *harness) optIn(kind models.Kind, targetType models.TargetType, id string) {
	require.NoError(h.t, h.settings.Save(context.Background(), &models.Settings{
		Kind: kind, OwnerType: targetType, OwnerID: id, Mail: true,
	}))
}

func (h *harness) record(kind models.Kind, subject, owner string, detail models.Detail) *models.SentRecord {
	h.t.Helper()
	rec, err := h.ledger.Find(context.Background(), models.SentKey{
		TargetType: models.TargetUser, TargetID: owner, Kind: kind, SubjectID: subject, Detail: detail,
	})
	require.NoError(h.t, err)
	return rec
}
