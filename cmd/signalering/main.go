package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"signalering/internal/caseindex"
	"signalering/internal/platform/config"
	"signalering/internal/platform/httpserver"
	"signalering/internal/platform/kafka"
	"signalering/internal/platform/logger"
	platformmetrics "signalering/internal/platform/metrics"
	"signalering/internal/platform/postgres"
	"signalering/internal/platform/redis"
	"signalering/internal/signalering/events"
	"signalering/internal/signalering/handler"
	"signalering/internal/signalering/mail"
	"signalering/internal/signalering/mailer"
	"signalering/internal/signalering/mailtemplate"
	"signalering/internal/signalering/metrics"
	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
	"signalering/internal/signalering/scanner"
	"signalering/internal/signalering/service"
	notificationstore "signalering/internal/signalering/store/notification"
	sentstore "signalering/internal/signalering/store/sent"
	settingsstore "signalering/internal/signalering/store/settings"
	templatestore "signalering/internal/signalering/store/template"
	"signalering/internal/signalering/target"
	"signalering/internal/signalering/worker"
	"signalering/pkg/platform/tx"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("signalering stopped", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	settings      ports.SettingsStore
	ledger        ports.SentLedger
	notifications ports.NotificationStore
	templates     ports.TemplateStore
	tx            tx.Runner
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	checks := map[string]handler.Check{}

	st, closeStores, err := openStores(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeStores()

	index, err := caseindex.Open(cfg.Database.IndexDriver, cfg.Database.IndexURL)
	if err != nil {
		return err
	}
	defer index.Close()
	checks["case_index"] = index.Ping

	reg := platformmetrics.NewRegistry()
	httpMetrics := platformmetrics.New(reg)
	m := metrics.New(reg)

	cache, closeCache, err := targetCache(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeCache()
	resolver, err := target.New(index,
		target.WithCache(cache),
		target.WithTTL(cfg.Dispatch.TargetCacheTTL),
		target.WithLogger(log),
	)
	if err != nil {
		return err
	}
	assembler, err := mailtemplate.NewAssembler(st.templates, index)
	if err != nil {
		return err
	}
	sender, err := mailSender(cfg, log)
	if err != nil {
		return err
	}
	var mailerOpts []mailer.Option
	if cfg.Mail.ReplyTo != "" {
		mailerOpts = append(mailerOpts, mailer.WithReplyTo(models.Address{Name: cfg.Mail.FromName, Email: cfg.Mail.ReplyTo}))
	}
	mails, err := mailer.New(resolver, assembler, sender, models.Address{Name: cfg.Mail.FromName, Email: cfg.Mail.From}, mailerOpts...)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := changePublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	scan, err := scanner.New(index, scanner.WithLocation(loc))
	if err != nil {
		return err
	}
	engine, err := service.NewEngine(scan, st.settings, st.ledger, st.notifications, mails,
		service.WithEngineLogger(log),
		service.WithEngineMetrics(m),
		service.WithEnginePublisher(publisher),
		service.WithWorkers(cfg.Dispatch.Workers),
		service.WithClaimTTL(cfg.Dispatch.ClaimTTL),
	)
	if err != nil {
		return err
	}
	feed, err := service.NewNotificationService(st.notifications, st.settings, st.ledger, mails,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithPublisher(publisher),
		service.WithTxRunner(st.tx),
	)
	if err != nil {
		return err
	}
	settings, err := service.NewSettingsService(st.settings, log)
	if err != nil {
		return err
	}
	retention, err := service.NewRetention(st.notifications, log, m)
	if err != nil {
		return err
	}

	scheduler, err := worker.New(engine, retention, cfg.Dispatch.Interval, cfg.Dispatch.RetentionDays,
		worker.WithLocation(loc),
		worker.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Get("/health", handler.Health(checks))
	router.Handle("/metrics", platformmetrics.Handler(reg))
	handler.New(engine, retention, feed, settings, log,
		handler.WithAdminToken(cfg.Server.AdminToken),
		handler.WithMetrics(httpMetrics),
		handler.WithRetentionDays(cfg.Dispatch.RetentionDays),
	).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	schedulerDone := make(chan error, 1)
	go func() { schedulerDone <- scheduler.Run(ctx) }()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting signalering", "addr", cfg.Server.Addr, "interval", cfg.Dispatch.Interval.String(), "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			stop()
			<-schedulerDone
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-schedulerDone; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStores uses postgres when a database URL is configured and in-memory
// stores otherwise.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]handler.Check) (stores, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
		return stores{
			settings:      settingsstore.NewInMemory(),
			ledger:        sentstore.NewInMemory(),
			notifications: notificationstore.NewInMemory(),
			templates:     templatestore.NewInMemory(templatestore.DefaultTemplates()...),
			tx:            tx.Passthrough{},
		}, func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.DefaultPool)
	if err != nil {
		return stores{}, nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		_ = db.Close()
		return stores{}, nil, err
	}
	checks["database"] = db.PingContext
	return postgresStores(db), func() { _ = db.Close() }, nil
}

func postgresStores(db *sql.DB) stores {
	return stores{
		settings:      settingsstore.NewPostgres(db),
		ledger:        sentstore.NewPostgres(db),
		notifications: notificationstore.NewPostgres(db),
		templates:     templatestore.NewPostgres(db),
		tx:            tx.NewSQLRunner(db),
	}
}

func targetCache(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]handler.Check) (target.Cache, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("no REDIS_URL configured, caching targets in process")
		return target.NewMemoryCache(), func() {}, nil
	}
	checks["redis"] = client.Health
	return target.NewRedisCache(client), func() { _ = client.Close() }, nil
}

func mailSender(cfg config.Config, log *slog.Logger) (ports.MailSender, error) {
	if cfg.Mail.SMTPAddr == "" {
		log.Warn("no SMTP_ADDR configured, mails are logged only")
		return mail.NewLogSender(log), nil
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Addr:     cfg.Mail.SMTPAddr,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
	}, mail.WithLogger(log))
}

func changePublisher(ctx context.Context, cfg config.Config, log *slog.Logger) (ports.ChangePublisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("no KAFKA_BROKERS configured, change events are dropped")
		return events.Nop{}, func() {}, nil
	}
	client, err := kafka.NewProducer(ctx, kafka.Config{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
		Timeout:  10 * time.Second,
	}, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, 3, 1); err != nil {
		client.Close()
		return nil, nil, err
	}
	return events.NewKafkaPublisher(client, cfg.Kafka.Topic), func() { client.Close() }, nil
}
