package template

import (
	"context"
	"sync"

	"signalering/internal/signalering/models"
)

// InMemoryStore holds templates in a map. NewInMemory seeds the defaults.
type InMemoryStore struct {
	mu        sync.RWMutex
	templates map[models.TemplateID]models.MailTemplate
}

func NewInMemory(templates ...models.MailTemplate) *InMemoryStore {
	if len(templates) == 0 {
		templates = DefaultTemplates()
	}
	s := &InMemoryStore{templates: make(map[models.TemplateID]models.MailTemplate, len(templates))}
	for _, t := range templates {
		s.templates[t.ID] = t
	}
	return s
}

func (s *InMemoryStore) FindTemplate(_ context.Context, id models.TemplateID) (*models.MailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Remove drops a template, leaving its kind unmailable.
func (s *InMemoryStore) Remove(id models.TemplateID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, id)
}
