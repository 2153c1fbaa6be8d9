package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Dispatcher,Purger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"signalering/internal/platform/metrics"
	"signalering/internal/platform/middleware"
	"signalering/internal/signalering/models"
	"signalering/internal/signalering/service"
	dErrors "signalering/pkg/domain-errors"
	"signalering/pkg/platform/httputil"
)

// Dispatcher runs the deadline dispatch for the clock in ctx.
type Dispatcher interface {
	Run(ctx context.Context) ([]*service.Report, error)
}

// Purger removes old live notifications without publishing changes.
type Purger interface {
	PurgeWithoutEvents(ctx context.Context, olderThanDays int) (int, error)
}

// Feed is the notification surface of a target.
type Feed interface {
	Signal(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]*models.Notification, error)
	Latest(ctx context.Context, targetType models.TargetType, targetID string) (*time.Time, error)
	Count(ctx context.Context, kind models.Kind, targetType models.TargetType, targetID string) (int, error)
	Delete(ctx context.Context, filter models.NotificationFilter) (int, error)
	ClearSubject(ctx context.Context, subjectType models.SubjectType, subjectID string) (int, error)
}

type Settings interface {
	Get(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) (*models.Settings, error)
	List(ctx context.Context, ownerType models.TargetType, ownerID string) ([]*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
	Delete(ctx context.Context, kind models.Kind, ownerType models.TargetType, ownerID string) error
}

// Handler exposes signalering over HTTP.
type Handler struct {
	dispatcher    Dispatcher
	purger        Purger
	feed          Feed
	settings      Settings
	logger        *slog.Logger
	metrics       *metrics.Metrics
	adminToken    string
	retentionDays int
	timeout       time.Duration
}

type Option func(*Handler)

// WithAdminToken mounts the admin routes behind token. Without it they are not served.
func WithAdminToken(token string) Option {
	return func(h *Handler) {
		h.adminToken = token
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithRetentionDays sets the purge age used when a purge request names none.
func WithRetentionDays(days int) Option {
	return func(h *Handler) {
		h.retentionDays = days
	}
}

func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func New(dispatcher Dispatcher, purger Purger, feed Feed, settings Settings, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		dispatcher:    dispatcher,
		purger:        purger,
		feed:          feed,
		settings:      settings,
		logger:        logger,
		retentionDays: 90,
		timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the signalering routes on r.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Timeout(h.timeout))
	api.Use(middleware.RequestTime)
	api.Use(middleware.Latency(h.metrics))

	if h.adminToken != "" {
		api.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdminToken(h.adminToken, h.logger))
			admin.Post("/admin/signalering/run", h.handleRun)
			admin.Post("/admin/signalering/purge", h.handlePurge)
		})
	}

	api.Post("/signalering/notifications", h.handleSignal)
	api.Delete("/signalering/subjects/{subjectType}/{subjectId}", h.handleClearSubject)
	api.Route("/signalering/{targetType}/{targetId}", func(target chi.Router) {
		target.Get("/notifications", h.handleList)
		target.Delete("/notifications", h.handleDelete)
		target.Get("/latest", h.handleLatest)
		target.Get("/count", h.handleCount)
		target.Get("/settings", h.handleListSettings)
		target.Get("/settings/{kind}", h.handleGetSettings)
		target.Put("/settings/{kind}", h.handleSaveSettings)
		target.Delete("/settings/{kind}", h.handleDeleteSettings)
	})

	r.Mount("/", api)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	log := h.logger.With("request_id", middleware.GetRequestID(ctx), "error", err)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		log.ErrorContext(ctx, msg)
	} else {
		log.WarnContext(ctx, msg)
	}
	httputil.WriteError(w, err)
}
