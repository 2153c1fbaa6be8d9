package settings

import (
	"context"
	"sort"
	"sync"

	"signalering/internal/signalering/models"
)

type settingsKey struct {
	kind      models.Kind
	ownerType models.TargetType
	ownerID   string
}

// InMemoryStore keeps settings in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	settings map[settingsKey]models.Settings
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{settings: make(map[settingsKey]models.Settings)}
}

func (s *InMemoryStore) Find(_ context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.settings[settingsKey{kind, ownerType, ownerID}]
	if !ok {
		return nil, nil
	}
	return &found, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerType models.TargetType, ownerID string) ([]*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Settings
	for key, value := range s.settings {
		if key.ownerType == ownerType && key.ownerID == ownerID {
			v := value
			out = append(out, &v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

func (s *InMemoryStore) Save(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settingsKey{settings.Kind, settings.OwnerType, settings.OwnerID}] = *settings
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, settingsKey{kind, ownerType, ownerID})
	return nil
}
