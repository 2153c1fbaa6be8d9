package sent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"signalering/internal/signalering/models"
	"signalering/pkg/platform/tx"
)

// PostgresLedger persists the dedup ledger in signalering_sent. The primary
// key over (target_type, target_id, kind, subject_id, detail) makes Claim a
// single conditional upsert.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

const keyPredicate = `target_type = $1 AND target_id = $2 AND kind = $3 AND subject_id = $4 AND detail = $5`

func keyArgs(key models.SentKey) []any {
	return []any{string(key.TargetType), key.TargetID, string(key.Kind), key.SubjectID, string(key.Detail)}
}

func (l *PostgresLedger) Exists(ctx context.Context, key models.SentKey, claimCutoff time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM signalering_sent
		WHERE ` + keyPredicate + ` AND (confirmed OR sent_at >= $6)
	)`
	var exists bool
	args := append(keyArgs(key), claimCutoff)
	if err := tx.Exec(ctx, l.db).QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sent record: %w", err)
	}
	return exists, nil
}

func (l *PostgresLedger) Claim(ctx context.Context, key models.SentKey, at, claimCutoff time.Time) (bool, error) {
	query := `
		INSERT INTO signalering_sent (target_type, target_id, kind, subject_id, detail, sent_at, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		ON CONFLICT (target_type, target_id, kind, subject_id, detail) DO UPDATE SET
			sent_at = EXCLUDED.sent_at
		WHERE signalering_sent.confirmed = FALSE AND signalering_sent.sent_at < $7
	`
	args := append(keyArgs(key), at, claimCutoff)
	result, err := tx.Exec(ctx, l.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("claim sent record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim sent record: %w", err)
	}
	return affected == 1, nil
}

func (l *PostgresLedger) Confirm(ctx context.Context, key models.SentKey, sentAt time.Time) error {
	query := `
		INSERT INTO signalering_sent (target_type, target_id, kind, subject_id, detail, sent_at, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (target_type, target_id, kind, subject_id, detail) DO UPDATE SET
			sent_at = EXCLUDED.sent_at,
			confirmed = TRUE
	`
	args := append(keyArgs(key), sentAt)
	if _, err := tx.Exec(ctx, l.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("confirm sent record: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Release(ctx context.Context, key models.SentKey) error {
	query := `DELETE FROM signalering_sent WHERE ` + keyPredicate + ` AND confirmed = FALSE`
	if _, err := tx.Exec(ctx, l.db).ExecContext(ctx, query, keyArgs(key)...); err != nil {
		return fmt.Errorf("release sent record: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Delete(ctx context.Context, key models.SentKey) (bool, error) {
	result, err := tx.Exec(ctx, l.db).ExecContext(ctx, `DELETE FROM signalering_sent WHERE `+keyPredicate, keyArgs(key)...)
	if err != nil {
		return false, fmt.Errorf("delete sent record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete sent record: %w", err)
	}
	return affected > 0, nil
}

func (l *PostgresLedger) DeleteBySubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error) {
	kinds := make([]string, 0, 2)
	for _, k := range models.KindsAbout(subjectType) {
		kinds = append(kinds, string(k))
	}
	result, err := tx.Exec(ctx, l.db).ExecContext(ctx,
		`DELETE FROM signalering_sent WHERE subject_id = $1 AND kind = ANY($2)`, subjectID, pq.Array(kinds))
	if err != nil {
		return 0, fmt.Errorf("delete sent records by subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete sent records by subject: %w", err)
	}
	return int(affected), nil
}

func (l *PostgresLedger) Find(ctx context.Context, key models.SentKey) (*models.SentRecord, error) {
	query := `SELECT sent_at, confirmed FROM signalering_sent WHERE ` + keyPredicate
	record := models.SentRecord{SentKey: key}
	err := tx.Exec(ctx, l.db).QueryRowContext(ctx, query, keyArgs(key)...).Scan(&record.Timestamp, &record.Confirmed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find sent record: %w", err)
	}
	return &record, nil
}
