package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kerr"
)

func TestTopicResult(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "created", err: nil},
		{name: "already exists", err: kerr.TopicAlreadyExists},
		{name: "already exists wrapped", err: fmt.Errorf("create: %w", kerr.TopicAlreadyExists)},
		{name: "broker refused", err: kerr.TopicAuthorizationFailed, wantErr: kerr.TopicAuthorizationFailed},
		{name: "request failed", err: context.DeadlineExceeded, wantErr: context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := topicResult("signalering.changes", tt.err)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr))
			assert.Contains(t, err.Error(), "signalering.changes")
		})
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), Config{}, "signalering.changes")
	assert.Error(t, err)
}
