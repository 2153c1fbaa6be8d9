// Package kafka opens franz-go clients and provisions topics.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Config addresses the brokers a producer writes to.
type Config struct {
	Brokers  []string
	ClientID string
	Timeout  time.Duration
}

// NewProducer returns a client that produces to defaultTopic unless a record
// names its own topic. It pings the cluster before returning.
func NewProducer(ctx context.Context, cfg Config, defaultTopic string) (*kgo.Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(defaultTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, kgo.ProduceRequestTimeout(cfg.Timeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return client, nil
}

// EnsureTopic creates topic when it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(client)
	_, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, topic)
	return topicResult(topic, err)
}

// topicResult treats an existing topic as success. CreateTopic reports the
// per-topic error as its returned error as well as in the response.
func topicResult(topic string, err error) error {
	if err == nil || errors.Is(err, kerr.TopicAlreadyExists) {
		return nil
	}
	return fmt.Errorf("creating topic %s: %w", topic, err)
}
