package notification

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"signalering/internal/signalering/models"
	"signalering/pkg/platform/tx"
)

// PostgresStore persists live notifications in signalering_notification.
// The unique key (kind, detail, subject_id, target_id) backs Upsert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const notificationColumns = `kind, detail, subject_type, subject_id, target_type, target_id, created_at`

func (s *PostgresStore) Upsert(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return fmt.Errorf("notification is required")
	}
	query := `
		INSERT INTO signalering_notification (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, detail, subject_id, target_id) DO UPDATE SET
			subject_type = EXCLUDED.subject_type,
			target_type = EXCLUDED.target_type,
			created_at = GREATEST(signalering_notification.created_at, EXCLUDED.created_at)
	`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		string(n.Kind), string(n.Detail), string(n.SubjectType), n.SubjectID,
		string(n.TargetType), n.TargetID, n.Timestamp)
	if err != nil {
		return fmt.Errorf("upsert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + notificationColumns + ` FROM signalering_notification` + where +
		` ORDER BY created_at DESC, kind, subject_id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var (
			n                                    models.Notification
			kind, detail, subjectType, targetType string
		)
		if err := rows.Scan(&kind, &detail, &subjectType, &n.SubjectID, &targetType, &n.TargetID, &n.Timestamp); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Kind = models.Kind(kind)
		n.Detail = models.Detail(detail)
		n.SubjectType = models.SubjectType(subjectType)
		n.TargetType = models.TargetType(targetType)
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LatestTimestamp(ctx context.Context, targetType models.TargetType, targetID string) (*time.Time, error) {
	var latest sql.NullTime
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM signalering_notification WHERE target_type = $1 AND target_id = $2`,
		string(targetType), targetID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("latest notification timestamp: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

func (s *PostgresStore) CountByKind(ctx context.Context, kind models.Kind, targetType models.TargetType, targetID string) (int, error) {
	var count int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signalering_notification WHERE kind = $1 AND target_type = $2 AND target_id = $3`,
		string(kind), string(targetType), targetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Delete(ctx context.Context, filter models.NotificationFilter) (int, error) {
	where, args := whereClause(filter)
	return s.exec(ctx, "delete notifications", `DELETE FROM signalering_notification`+where, args...)
}

func (s *PostgresStore) DeleteBySubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error) {
	return s.exec(ctx, "delete notifications by subject",
		`DELETE FROM signalering_notification WHERE subject_type = $1 AND subject_id = $2`,
		string(subjectType), subjectID)
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return s.exec(ctx, "delete expired notifications",
		`DELETE FROM signalering_notification WHERE created_at < $1`, cutoff)
}

func (s *PostgresStore) exec(ctx context.Context, op, query string, args ...any) (int, error) {
	result, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

func whereClause(filter models.NotificationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		add("kind = ANY($%d)", pq.Array(kinds))
	}
	if filter.SubjectType != "" {
		add("subject_type = $%d", string(filter.SubjectType))
	}
	if filter.SubjectID != "" {
		add("subject_id = $%d", filter.SubjectID)
	}
	if filter.TargetType != "" {
		add("target_type = $%d", string(filter.TargetType))
	}
	if filter.TargetID != "" {
		add("target_id = $%d", filter.TargetID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
