package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"signalering/internal/signalering/models"
	"signalering/pkg/platform/sentinel"
)

// SMTPConfig addresses the relay. Username enables PLAIN auth.
type SMTPConfig struct {
	Addr        string
	Username    string
	Password    string
	DialTimeout time.Duration
}

// SMTPSender delivers composed mails to a relay, upgrading with STARTTLS
// whenever the relay offers it.
type SMTPSender struct {
	cfg    SMTPConfig
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*SMTPSender)

func WithLogger(logger *slog.Logger) Option {
	return func(s *SMTPSender) {
		s.logger = logger
	}
}

func NewSMTPSender(cfg SMTPConfig, opts ...Option) (*SMTPSender, error) {
	if cfg.Addr == "" {
		return nil, errors.New("smtp address is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	s := &SMTPSender{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SMTPSender) Send(ctx context.Context, m models.Mail) error {
	body, err := Compose(m, s.now())
	if err != nil {
		return err
	}

	host, _, err := net.SplitHostPort(s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("parsing smtp address %s: %w", s.cfg.Addr, err)
	}

	dialer := net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w: %w", s.cfg.Addr, sentinel.ErrUnavailable, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("SMTP STARTTLS: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth: %w", err)
		}
	}

	if err := client.Mail(m.From.Email); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}
	if err := client.Rcpt(m.To.Email); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("SMTP QUIT: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "mail relayed", "subject", m.Subject)
	}
	return nil
}

// LogSender logs mails instead of sending them. Used when no relay is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, m models.Mail) error {
	s.logger.InfoContext(ctx, "mail not relayed, no smtp configured",
		"to", m.To.Email,
		"subject", m.Subject,
	)
	return nil
}
