package sent

import (
	"context"
	"sync"
	"time"

	"signalering/internal/signalering/models"
)

// InMemoryLedger is a map-backed ledger. A single mutex makes Claim atomic.
type InMemoryLedger struct {
	mu      sync.Mutex
	records map[models.SentKey]models.SentRecord
}

func NewInMemory() *InMemoryLedger {
	return &InMemoryLedger{records: make(map[models.SentKey]models.SentRecord)}
}

func (l *InMemoryLedger) Exists(_ context.Context, key models.SentKey, claimCutoff time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[key]
	return ok && record.LiveAt(claimCutoff), nil
}

func (l *InMemoryLedger) Claim(_ context.Context, key models.SentKey, at, claimCutoff time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if record, ok := l.records[key]; ok && record.LiveAt(claimCutoff) {
		return false, nil
	}
	l.records[key] = models.SentRecord{SentKey: key, Timestamp: at}
	return true, nil
}

func (l *InMemoryLedger) Confirm(_ context.Context, key models.SentKey, sentAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[key] = models.SentRecord{SentKey: key, Timestamp: sentAt, Confirmed: true}
	return nil
}

func (l *InMemoryLedger) Release(_ context.Context, key models.SentKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if record, ok := l.records[key]; ok && !record.Confirmed {
		delete(l.records, key)
	}
	return nil
}

func (l *InMemoryLedger) Delete(_ context.Context, key models.SentKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[key]
	delete(l.records, key)
	return ok, nil
}

func (l *InMemoryLedger) DeleteBySubject(_ context.Context, subjectType models.SubjectType, subjectID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for key := range l.records {
		if key.SubjectID == subjectID && key.Kind.SubjectType() == subjectType {
			delete(l.records, key)
			removed++
		}
	}
	return removed, nil
}

func (l *InMemoryLedger) Find(_ context.Context, key models.SentKey) (*models.SentRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}
