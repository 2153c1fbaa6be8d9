// Package caseindex reads cases, tasks, documents and the people they are
// assigned to from the case-handling read model.
package caseindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"signalering/internal/signalering/models"
	"signalering/pkg/platform/sentinel"
)

// Index implements ports.CaseIndex, ports.SourceLoader and ports.Directory.
type Index struct {
	db *sqlx.DB
}

// Open connects to the read model with the given database/sql driver name
// ("pgx" in production, "sqlite" for local files).
func Open(driverName, dsn string) (*Index, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening case index: %w", err)
	}
	return New(db), nil
}

func New(db *sqlx.DB) *Index {
	return &Index{db: db}
}

func (i *Index) Close() error {
	return i.db.Close()
}

func (i *Index) Ping(ctx context.Context) error {
	return i.db.PingContext(ctx)
}

// EnsureSchema creates the read model tables when they are missing.
func (i *Index) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating case index schema: %w", err)
		}
	}
	return nil
}

func (i *Index) ListCaseTypeWindows(ctx context.Context) ([]models.CaseTypeWindow, error) {
	var rows []struct {
		ID         string        `db:"id"`
		TargetDays sql.NullInt64 `db:"target_date_warning_days"`
		FatalDays  sql.NullInt64 `db:"fatal_date_warning_days"`
	}
	err := i.db.SelectContext(ctx, &rows,
		`SELECT id, target_date_warning_days, fatal_date_warning_days FROM case_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing case type windows: %w", err)
	}
	windows := make([]models.CaseTypeWindow, 0, len(rows))
	for _, r := range rows {
		windows = append(windows, models.CaseTypeWindow{
			CaseTypeID:     r.ID,
			TargetDateDays: nullDays(r.TargetDays),
			FatalDateDays:  nullDays(r.FatalDays),
		})
	}
	return windows, nil
}

func (i *Index) FindCasesWithDeadlineBetween(ctx context.Context, caseTypeID string, field models.DeadlineField, from, to time.Time) ([]models.Candidate, error) {
	column, err := deadlineColumn(field)
	if err != nil {
		return nil, err
	}
	query := i.db.Rebind(`
		SELECT id AS subject_id, COALESCE(owner_id, '') AS owner_id
		FROM cases
		WHERE case_type_id = ? AND closed_at IS NULL
			AND ` + column + ` >= ? AND ` + column + ` <= ?
		ORDER BY id`)
	var out []models.Candidate
	if err := i.db.SelectContext(ctx, &out, query, caseTypeID, dateArg(from), dateArg(to)); err != nil {
		return nil, fmt.Errorf("finding cases with %s in window: %w", column, err)
	}
	return out, nil
}

func (i *Index) FindCasesWithDeadlineAfter(ctx context.Context, caseTypeID string, field models.DeadlineField, after time.Time) ([]models.Candidate, error) {
	column, err := deadlineColumn(field)
	if err != nil {
		return nil, err
	}
	query := i.db.Rebind(`
		SELECT id AS subject_id, COALESCE(owner_id, '') AS owner_id
		FROM cases
		WHERE case_type_id = ? AND closed_at IS NULL AND ` + column + ` > ?
		ORDER BY id`)
	var out []models.Candidate
	if err := i.db.SelectContext(ctx, &out, query, caseTypeID, dateArg(after)); err != nil {
		return nil, fmt.Errorf("finding cases with %s beyond window: %w", column, err)
	}
	return out, nil
}

func (i *Index) FindOpenTasksDueBy(ctx context.Context, date time.Time) ([]models.Candidate, error) {
	return i.findTasks(ctx, "<=", date)
}

func (i *Index) FindOpenTasksDueAfter(ctx context.Context, date time.Time) ([]models.Candidate, error) {
	return i.findTasks(ctx, ">", date)
}

func (i *Index) findTasks(ctx context.Context, op string, date time.Time) ([]models.Candidate, error) {
	query := i.db.Rebind(`
		SELECT id AS subject_id, COALESCE(assignee_id, '') AS owner_id
		FROM tasks
		WHERE closed_at IS NULL AND due_date ` + op + ` ?
		ORDER BY id`)
	var out []models.Candidate
	if err := i.db.SelectContext(ctx, &out, query, dateArg(date)); err != nil {
		return nil, fmt.Errorf("finding open tasks due %s %s: %w", op, dateArg(date), err)
	}
	return out, nil
}

func (i *Index) FindCase(ctx context.Context, id string) (*models.CaseInfo, error) {
	var (
		info                  models.CaseInfo
		ownerID               sql.NullString
		targetDate, fatalDate dbDate
	)
	err := i.db.QueryRowxContext(ctx, i.db.Rebind(`
		SELECT c.id, c.identification, c.description, c.case_type_id, COALESCE(t.name, ''),
			c.owner_id, c.target_date, c.fatal_date
		FROM cases c
		LEFT JOIN case_types t ON t.id = c.case_type_id
		WHERE c.id = ?`), id).Scan(
		&info.ID, &info.Identification, &info.Description, &info.CaseTypeID, &info.CaseType,
		&ownerID, &targetDate, &fatalDate,
	)
	if err != nil {
		return nil, notFound(err, "case", id)
	}
	info.OwnerID = ownerID.String
	info.TargetDate = targetDate.ptr()
	info.FatalDate = fatalDate.ptr()
	return &info, nil
}

func (i *Index) FindTask(ctx context.Context, id string) (*models.TaskInfo, error) {
	var (
		info     models.TaskInfo
		assignee sql.NullString
		dueDate  dbDate
	)
	err := i.db.QueryRowxContext(ctx, i.db.Rebind(
		`SELECT id, case_id, name, assignee_id, due_date FROM tasks WHERE id = ?`), id).
		Scan(&info.ID, &info.CaseID, &info.Name, &assignee, &dueDate)
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	info.AssigneeID = assignee.String
	info.DueDate = dueDate.ptr()
	return &info, nil
}

func (i *Index) FindDocument(ctx context.Context, id string) (*models.DocumentInfo, error) {
	var info models.DocumentInfo
	err := i.db.QueryRowxContext(ctx, i.db.Rebind(
		`SELECT id, case_id, title, url FROM documents WHERE id = ?`), id).
		Scan(&info.ID, &info.CaseID, &info.Title, &info.URL)
	if err != nil {
		return nil, notFound(err, "document", id)
	}
	return &info, nil
}

func (i *Index) FindUser(ctx context.Context, userID string) (*models.Address, error) {
	return i.findAddress(ctx, `SELECT display_name, email FROM users WHERE id = ?`, userID)
}

func (i *Index) FindGroup(ctx context.Context, groupID string) (*models.Address, error) {
	return i.findAddress(ctx, `SELECT name, email FROM user_groups WHERE id = ?`, groupID)
}

func (i *Index) findAddress(ctx context.Context, query, id string) (*models.Address, error) {
	var addr models.Address
	err := i.db.QueryRowxContext(ctx, i.db.Rebind(query), id).Scan(&addr.Name, &addr.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up %s: %w", id, err)
	}
	if addr.Email == "" {
		return nil, nil
	}
	return &addr, nil
}

func deadlineColumn(field models.DeadlineField) (string, error) {
	switch field {
	case models.FieldTargetDate, models.FieldFatalDate:
		return string(field), nil
	}
	return "", fmt.Errorf("unknown deadline field %q", field)
}

func nullDays(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	days := int(v.Int64)
	return &days
}

func notFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, sentinel.ErrNotFound)
	}
	return fmt.Errorf("loading %s %s: %w", entity, id, err)
}
