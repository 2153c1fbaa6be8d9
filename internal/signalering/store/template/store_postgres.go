package template

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"signalering/internal/signalering/models"
)

// PostgresStore reads templates from signalering_mail_template.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindTemplate(ctx context.Context, id models.TemplateID) (*models.MailTemplate, error) {
	t := models.MailTemplate{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT subject, body FROM signalering_mail_template WHERE id = $1`, string(id)).
		Scan(&t.Subject, &t.Body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find mail template: %w", err)
	}
	return &t, nil
}
