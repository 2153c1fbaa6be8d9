package service

import (
	"context"
	"errors"
	"log/slog"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	dErrors "signalering/pkg/domain-errors"
)

// SettingsService administers opt-in settings with delete-on-empty semantics.
type SettingsService struct {
	store  ports.SettingsStore
	logger *slog.Logger
}

func NewSettingsService(store ports.SettingsStore, logger *slog.Logger) (*SettingsService, error) {
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{store: store, logger: logger}, nil
}

// Get returns the stored settings or an all-off value when none are stored.
func (s *SettingsService) Get(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) (*models.Settings, error) {
	key := &models.Settings{Kind: kind, OwnerType: ownerType, OwnerID: ownerID}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	found, err := s.store.Find(ctx, kind, ownerType, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	if found == nil {
		return key, nil
	}
	return found, nil
}

func (s *SettingsService) List(ctx context.Context, ownerType models.TargetType, ownerID string) ([]*models.Settings, error) {
	if err := validateTarget(ownerType, ownerID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list settings")
	}
	return list, nil
}

// Save stores settings; empty settings delete the row instead.
func (s *SettingsService) Save(ctx context.Context, settings *models.Settings) error {
	if settings == nil {
		return dErrors.New(dErrors.CodeBadRequest, "settings are required")
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.IsEmpty() {
		return s.Delete(ctx, settings.Kind, settings.OwnerType, settings.OwnerID)
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
	}
	s.logger.InfoContext(ctx, "settings saved",
		"kind", settings.Kind, "owner_type", settings.OwnerType, "owner_id", settings.OwnerID, "mail", settings.Mail)
	return nil
}

func (s *SettingsService) Delete(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) error {
	key := &models.Settings{Kind: kind, OwnerType: ownerType, OwnerID: ownerID}
	if err := key.Validate(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, kind, ownerType, ownerID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete settings")
	}
	s.logger.InfoContext(ctx, "settings deleted", "kind", kind, "owner_type", ownerType, "owner_id", ownerID)
	return nil
}
