package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"signalering/internal/signalering/metrics"
	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	dErrors "signalering/pkg/domain-errors"
	"signalering/pkg/platform/tx"
	"signalering/pkg/requestcontext"
)

const maxListLimit = 500

// NotificationService handles event-driven signals and an owner's feed.
type NotificationService struct {
	notifications ports.NotificationStore
	settings      ports.SettingsStore
	ledger        ports.SentLedger
	mailer        Mailer
	publisher     ports.ChangePublisher
	tx            tx.Runner
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*NotificationService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *NotificationService) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *NotificationService) {
		s.metrics = m
	}
}

func WithPublisher(p ports.ChangePublisher) Option {
	return func(s *NotificationService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithTxRunner makes ClearSubject remove notifications and ledger rows in one transaction.
func WithTxRunner(r tx.Runner) Option {
	return func(s *NotificationService) {
		if r != nil {
			s.tx = r
		}
	}
}

func NewNotificationService(
	notifications ports.NotificationStore,
	settings ports.SettingsStore,
	ledger ports.SentLedger,
	mailer Mailer,
	opts ...Option,
) (*NotificationService, error) {
	if notifications == nil {
		return nil, errors.New("notification store is required")
	}
	if settings == nil {
		return nil, errors.New("settings store is required")
	}
	if ledger == nil {
		return nil, errors.New("sent ledger is required")
	}
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	s := &NotificationService{
		notifications: notifications,
		settings:      settings,
		ledger:        ledger,
		mailer:        mailer,
		publisher:     nopPublisher{},
		tx:            tx.Passthrough{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Signal records an event-driven notification, publishes the change and mails
// the target when its settings opt in. Mail failures are logged, not returned:
// the live notification is already stored.
func (s *NotificationService) Signal(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return dErrors.New(dErrors.CodeBadRequest, "notification is required")
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = requestcontext.Now(ctx)
	}
	if err := n.Validate(); err != nil {
		return err
	}
	if n.Kind.IsDeadline() {
		return dErrors.New(dErrors.CodeValidation, "deadline notifications are raised by the dispatch engine")
	}

	if err := s.notifications.Upsert(ctx, n); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store notification")
	}
	s.publish(ctx, models.ChangeEvent{
		Type:       models.ChangeUpserted,
		TargetType: n.TargetType,
		TargetID:   n.TargetID,
		Kind:       n.Kind,
		SubjectID:  n.SubjectID,
		At:         n.Timestamp,
	})

	settings, err := s.settings.Find(ctx, n.Kind, n.TargetType, n.TargetID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	if !settings.MailEnabled() {
		return nil
	}
	s.mail(ctx, n)
	return nil
}

func (s *NotificationService) mail(ctx context.Context, n *models.Notification) {
	log := s.logger.With("kind", n.Kind, "subject_id", n.SubjectID, "target_id", n.TargetID)
	mail, reason, err := s.mailer.Compose(ctx, n)
	if err != nil {
		log.ErrorContext(ctx, "composing mail failed", "error", err)
		return
	}
	if mail == nil {
		log.InfoContext(ctx, "notification not mailed", "reason", reason)
		if s.metrics != nil {
			s.metrics.IncrementSkipped(n.Kind, reason)
		}
		return
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		log.ErrorContext(ctx, "sending mail failed", "error", err)
		if s.metrics != nil {
			s.metrics.IncrementMailsFailed(n.Kind)
		}
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementMailsSent(n.Kind, n.Detail)
	}
}

// List returns a page of live notifications, newest first.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	list, err := s.notifications.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return list, nil
}

// Latest returns the timestamp of the target's newest notification, nil when it has none.
func (s *NotificationService) Latest(ctx context.Context, targetType models.TargetType, targetID string) (*time.Time, error) {
	if err := validateTarget(targetType, targetID); err != nil {
		return nil, err
	}
	latest, err := s.notifications.LatestTimestamp(ctx, targetType, targetID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest notification")
	}
	return latest, nil
}

func (s *NotificationService) Count(ctx context.Context, kind models.Kind, targetType models.TargetType, targetID string) (int, error) {
	if !kind.IsValid() {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid notification kind: "+string(kind))
	}
	if err := validateTarget(targetType, targetID); err != nil {
		return 0, err
	}
	count, err := s.notifications.CountByKind(ctx, kind, targetType, targetID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notifications")
	}
	return count, nil
}

// Delete removes the target's notifications matching filter and publishes one
// change event when anything was removed. The filter must name the target.
func (s *NotificationService) Delete(ctx context.Context, filter models.NotificationFilter) (int, error) {
	if !filter.HasTarget() {
		return 0, dErrors.New(dErrors.CodeValidation, "delete requires a target")
	}
	if err := validateFilter(filter); err != nil {
		return 0, err
	}
	filter.Limit, filter.Offset = 0, 0
	removed, err := s.notifications.Delete(ctx, filter)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete notifications")
	}
	if removed > 0 {
		event := models.ChangeEvent{
			Type:       models.ChangeDeleted,
			TargetType: filter.TargetType,
			TargetID:   filter.TargetID,
			SubjectID:  filter.SubjectID,
			Count:      removed,
			At:         requestcontext.Now(ctx),
		}
		if len(filter.Kinds) == 1 {
			event.Kind = filter.Kinds[0]
		}
		s.publish(ctx, event)
	}
	return removed, nil
}

// ClearSubject removes every notification and ledger entry of a closed
// subject, for all targets. It publishes nothing.
func (s *NotificationService) ClearSubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error) {
	if !subjectType.IsValid() {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid subject type: "+string(subjectType))
	}
	if subjectID == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "subject id is required")
	}
	var removed int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.notifications.DeleteBySubject(ctx, subjectType, subjectID)
		if err != nil {
			return err
		}
		_, err = s.ledger.DeleteBySubject(ctx, subjectType, subjectID)
		return err
	})
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear subject notifications")
	}
	return removed, nil
}

func (s *NotificationService) publish(ctx context.Context, event models.ChangeEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publishing change event failed",
			"target_id", event.TargetID, "error", err)
	}
}

func validateTarget(targetType models.TargetType, targetID string) error {
	if !targetType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid target type: "+string(targetType))
	}
	if targetID == "" {
		return dErrors.New(dErrors.CodeValidation, "target id is required")
	}
	return nil
}

func validateFilter(filter models.NotificationFilter) error {
	for _, k := range filter.Kinds {
		if !k.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "invalid notification kind: "+string(k))
		}
	}
	if filter.SubjectType != "" && !filter.SubjectType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid subject type: "+string(filter.SubjectType))
	}
	if filter.TargetType != "" && !filter.TargetType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid target type: "+string(filter.TargetType))
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return dErrors.New(dErrors.CodeValidation, "limit and offset must not be negative")
	}
	return nil
}
