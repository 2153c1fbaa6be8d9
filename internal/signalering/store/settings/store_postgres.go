package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"signalering/internal/signalering/models"
	"signalering/pkg/platform/tx"
)

// PostgresStore persists settings in the signalering_settings table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) (*models.Settings, error) {
	query := `
		SELECT kind, owner_type, owner_id, mail
		FROM signalering_settings
		WHERE kind = $1 AND owner_type = $2 AND owner_id = $3
	`
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx, query, string(kind), string(ownerType), ownerID)
	found, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return found, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerType models.TargetType, ownerID string) ([]*models.Settings, error) {
	query := `
		SELECT kind, owner_type, owner_id, mail
		FROM signalering_settings
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY kind
	`
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, string(ownerType), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []*models.Settings
	for rows.Next() {
		found, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settings: %w", err)
		}
		out = append(out, found)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Save(ctx context.Context, settings *models.Settings) error {
	if settings == nil {
		return fmt.Errorf("settings are required")
	}
	query := `
		INSERT INTO signalering_settings (kind, owner_type, owner_id, mail)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kind, owner_type, owner_id) DO UPDATE SET
			mail = EXCLUDED.mail
	`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		string(settings.Kind), string(settings.OwnerType), settings.OwnerID, settings.Mail)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) error {
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM signalering_settings WHERE kind = $1 AND owner_type = $2 AND owner_id = $3`,
		string(kind), string(ownerType), ownerID)
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (*models.Settings, error) {
	var (
		kind, ownerType string
		out             models.Settings
	)
	if err := row.Scan(&kind, &ownerType, &out.OwnerID, &out.Mail); err != nil {
		return nil, err
	}
	out.Kind = models.Kind(kind)
	out.OwnerType = models.TargetType(ownerType)
	return &out, nil
}
