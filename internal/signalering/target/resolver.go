// Package target resolves notification targets to mailable addresses.
package target

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	"signalering/pkg/email"
)

const defaultTTL = 10 * time.Minute

// Resolver looks targets up in the directory through a read-through cache.
type Resolver struct {
	directory ports.Directory
	cache     Cache
	ttl       time.Duration
	logger    *slog.Logger
}

type Option func(*Resolver)

func WithCache(cache Cache) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func New(directory ports.Directory, opts ...Option) (*Resolver, error) {
	if directory == nil {
		return nil, errors.New("directory is required")
	}
	r := &Resolver{directory: directory, ttl: defaultTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns nil, nil when the target has no usable address. Cache
// failures are logged and the directory is consulted directly.
func (r *Resolver) Resolve(ctx context.Context, targetType models.TargetType, targetID string) (*models.Address, error) {
	key := string(targetType) + ":" + targetID
	if r.cache != nil {
		addr, found, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logWarn(ctx, "target cache read failed", "target_id", targetID, "error", err)
		} else if found {
			return addr, nil
		}
	}

	addr, err := r.lookup(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, addr, r.ttl); err != nil {
			r.logWarn(ctx, "target cache write failed", "target_id", targetID, "error", err)
		}
	}
	return addr, nil
}

func (r *Resolver) lookup(ctx context.Context, targetType models.TargetType, targetID string) (*models.Address, error) {
	var (
		found *models.Address
		err   error
	)
	switch targetType {
	case models.TargetUser:
		found, err = r.directory.FindUser(ctx, targetID)
	case models.TargetGroup:
		found, err = r.directory.FindGroup(ctx, targetID)
	default:
		return nil, fmt.Errorf("unsupported target type %q", targetType)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", targetType, targetID, err)
	}
	if found == nil {
		return nil, nil
	}

	address := email.Normalize(found.Email)
	if address == "" {
		return nil, nil
	}
	name := found.Name
	if name == "" {
		name = email.DisplayName(address)
	}
	return &models.Address{Name: name, Email: address}, nil
}

func (r *Resolver) logWarn(ctx context.Context, msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.WarnContext(ctx, msg, args...)
}
