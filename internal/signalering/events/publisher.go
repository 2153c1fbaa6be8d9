// Package events publishes feed change events to UI subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"

	"signalering/internal/signalering/models"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher writes change events as JSON, keyed by target so a target's
// events stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding change event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(string(event.TargetType) + ":" + event.TargetID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publishing change event: %w", err)
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event models.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []models.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, models.ChangeEvent) error {
	return nil
}
