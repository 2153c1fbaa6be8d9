package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"signalering/internal/signalering/models"
)

// InMemoryStore keeps live notifications keyed by their replace key.
type InMemoryStore struct {
	mu   sync.RWMutex
	rows map[models.NotificationKey]models.Notification
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{rows: make(map[models.NotificationKey]models.Notification)}
}

func (s *InMemoryStore) Upsert(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := n.Key()
	if existing, ok := s.rows[key]; ok && existing.Timestamp.After(n.Timestamp) {
		return nil
	}
	s.rows[key] = *n
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.NotificationFilter) ([]*models.Notification, error) {
	s.mu.RLock()
	matches := s.matching(filter)
	s.mu.RUnlock()

	sortNewestFirst(matches)
	return paginate(matches, filter.Limit, filter.Offset), nil
}

func (s *InMemoryStore) LatestTimestamp(_ context.Context, targetType models.TargetType, targetID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *time.Time
	for _, n := range s.rows {
		if n.TargetType != targetType || n.TargetID != targetID {
			continue
		}
		if latest == nil || n.Timestamp.After(*latest) {
			ts := n.Timestamp
			latest = &ts
		}
	}
	return latest, nil
}

func (s *InMemoryStore) CountByKind(_ context.Context, kind models.Kind, targetType models.TargetType, targetID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter := models.NotificationFilter{Kinds: []models.Kind{kind}, TargetType: targetType, TargetID: targetID}
	return len(s.matching(filter)), nil
}

func (s *InMemoryStore) Delete(_ context.Context, filter models.NotificationFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, n := range s.rows {
		if filter.Matches(&n) {
			delete(s.rows, key)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryStore) DeleteBySubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error) {
	return s.Delete(ctx, models.NotificationFilter{SubjectType: subjectType, SubjectID: subjectID})
}

func (s *InMemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, n := range s.rows {
		if n.Timestamp.Before(cutoff) {
			delete(s.rows, key)
			removed++
		}
	}
	return removed, nil
}

// matching must be called with the lock held.
func (s *InMemoryStore) matching(filter models.NotificationFilter) []*models.Notification {
	var out []*models.Notification
	for _, n := range s.rows {
		if filter.Matches(&n) {
			v := n
			out = append(out, &v)
		}
	}
	return out
}

func sortNewestFirst(rows []*models.Notification) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.After(rows[j].Timestamp)
		}
		if rows[i].Kind != rows[j].Kind {
			return rows[i].Kind < rows[j].Kind
		}
		return rows[i].SubjectID < rows[j].SubjectID
	})
}

func paginate(rows []*models.Notification, limit, offset int) []*models.Notification {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
