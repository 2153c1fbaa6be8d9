// Package ports defines the interfaces shared by the signalering services.
// Interfaces are placed here when consumed by more than one service or
// implemented outside this module (index, directory, transport).
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks MailSender,ChangePublisher,Directory

import (
	"context"
	"time"

	"signalering/internal/signalering/models"
)

// SettingsStore persists per-(kind, owner type, owner id) opt-in flags.
type SettingsStore interface {
	// Find returns nil, nil when no settings are stored for the key.
	Find(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) (*models.Settings, error)

	// ListByOwner returns every stored settings row of an owner.
	ListByOwner(ctx context.Context, ownerType models.TargetType, ownerID string) ([]*models.Settings, error)

	// Save upserts a settings row.
	Save(ctx context.Context, settings *models.Settings) error

	// Delete removes a settings row; deleting an absent row is not an error.
	Delete(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) error
}

// SentLedger is the idempotency ledger of dispatched deadline mails.
// Unconfirmed rows are claims held by an in-flight send; claims older than
// claimCutoff no longer gate dispatch.
type SentLedger interface {
	// Exists reports whether a confirmed record or a live claim exists for key.
	Exists(ctx context.Context, key models.SentKey, claimCutoff time.Time) (bool, error)

	// Claim atomically inserts an unconfirmed record if no live record exists.
	// It returns false when another dispatch already holds or completed the key.
	Claim(ctx context.Context, key models.SentKey, at, claimCutoff time.Time) (bool, error)

	// Confirm marks key as sent at sentAt.
	Confirm(ctx context.Context, key models.SentKey, sentAt time.Time) error

	// Release drops an unconfirmed claim after a failed send.
	Release(ctx context.Context, key models.SentKey) error

	// Delete removes the record for key whether or not it exists and reports
	// whether a row was removed.
	Delete(ctx context.Context, key models.SentKey) (bool, error)

	// DeleteBySubject removes every record of a closed subject. Only kinds
	// about subjectType match, so a case and a task sharing an id stay apart.
	DeleteBySubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error)

	// Find returns nil, nil when no record exists.
	Find(ctx context.Context, key models.SentKey) (*models.SentRecord, error)
}

// NotificationStore persists live notifications with replace-on-conflict.
type NotificationStore interface {
	// Upsert inserts n or replaces the timestamp of the row with the same key,
	// keeping the later timestamp.
	Upsert(ctx context.Context, n *models.Notification) error

	// List returns matching notifications, newest first.
	List(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, error)

	// LatestTimestamp returns the newest timestamp for a target, nil if it has none.
	LatestTimestamp(ctx context.Context, targetType models.TargetType, targetID string) (*time.Time, error)

	// CountByKind counts live notifications of one kind for a target.
	CountByKind(ctx context.Context, kind models.Kind, targetType models.TargetType, targetID string) (int, error)

	// Delete removes matching notifications and returns how many were removed.
	Delete(ctx context.Context, filter models.NotificationFilter) (int, error)

	// DeleteBySubject removes every notification about a subject, for all targets.
	DeleteBySubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error)

	// DeleteOlderThan removes every notification with timestamp before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// TemplateStore looks up stored mail templates.
type TemplateStore interface {
	// FindTemplate returns nil, nil when the template is not configured.
	FindTemplate(ctx context.Context, id models.TemplateID) (*models.MailTemplate, error)
}

// CaseIndex is the read-only case/task index used to find deadline candidates.
// Dates are calendar dates; only the year, month and day of the arguments are used.
type CaseIndex interface {
	// ListCaseTypeWindows returns the configured warning windows per case type.
	ListCaseTypeWindows(ctx context.Context) ([]models.CaseTypeWindow, error)

	// FindCasesWithDeadlineBetween returns open, assigned cases of caseTypeID
	// whose field lies in [from, to].
	FindCasesWithDeadlineBetween(ctx context.Context, caseTypeID string, field models.DeadlineField, from, to time.Time) ([]models.Candidate, error)

	// FindCasesWithDeadlineAfter returns open cases of caseTypeID whose field is
	// strictly after after.
	FindCasesWithDeadlineAfter(ctx context.Context, caseTypeID string, field models.DeadlineField, after time.Time) ([]models.Candidate, error)

	// FindOpenTasksDueBy returns open tasks due on or before date.
	FindOpenTasksDueBy(ctx context.Context, date time.Time) ([]models.Candidate, error)

	// FindOpenTasksDueAfter returns open tasks due strictly after date.
	FindOpenTasksDueAfter(ctx context.Context, date time.Time) ([]models.Candidate, error)
}

// SourceLoader loads the entities mail templates are filled from.
// Each method returns sentinel.ErrNotFound when the entity does not exist.
type SourceLoader interface {
	FindCase(ctx context.Context, id string) (*models.CaseInfo, error)
	FindTask(ctx context.Context, id string) (*models.TaskInfo, error)
	FindDocument(ctx context.Context, id string) (*models.DocumentInfo, error)
}

// Directory resolves targets to mailable addresses.
type Directory interface {
	// FindUser returns nil, nil when the user is unknown or has no address.
	FindUser(ctx context.Context, userID string) (*models.Address, error)

	// FindGroup returns nil, nil when the group is unknown or has no address.
	FindGroup(ctx context.Context, groupID string) (*models.Address, error)
}

// MailSender hands a composed mail to the transport.
type MailSender interface {
	Send(ctx context.Context, mail models.Mail) error
}

// ChangePublisher notifies UI subscribers that a target's feed changed.
type ChangePublisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}
