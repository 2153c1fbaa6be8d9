package service

import (
	"context"

	"signalering/internal/signalering/models"
)

// CandidateScanner finds deadline candidates for the run clock in ctx.
type CandidateScanner interface {
	CaseTypeWindows(ctx context.Context) ([]models.CaseTypeWindow, error)
	CasesInWindow(ctx context.Context, caseTypeID string, detail models.Detail, days int) ([]models.Candidate, error)
	CasesBeyondWindow(ctx context.Context, caseTypeID string, detail models.Detail, days int) ([]models.Candidate, error)
	TasksDueNow(ctx context.Context) ([]models.Candidate, error)
	TasksDueLater(ctx context.Context) ([]models.Candidate, error)
}

// Mailer composes a notification into a mail and sends it.
type Mailer interface {
	Compose(ctx context.Context, n *models.Notification) (*models.Mail, models.SkipReason, error)
	Send(ctx context.Context, mail *models.Mail) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.ChangeEvent) error { return nil }
