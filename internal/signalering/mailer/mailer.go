// Package mailer resolves a notification's recipient and template into a mail.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"signalering/internal/signalering/models"
	"signalering/internal/signalering/ports"
)

type TargetResolver interface {
	Resolve(ctx context.Context, targetType models.TargetType, targetID string) (*models.Address, error)
}

type MessageAssembler interface {
	Assemble(ctx context.Context, n *models.Notification, recipient models.Address) (*models.Message, error)
}

// Mailer composes and sends notification mails.
type Mailer struct {
	resolver  TargetResolver
	assembler MessageAssembler
	sender    ports.MailSender
	from      models.Address
	replyTo   *models.Address
}

type Option func(*Mailer)

func WithReplyTo(addr models.Address) Option {
	return func(m *Mailer) {
		if addr.Email != "" {
			m.replyTo = &addr
		}
	}
}

func New(resolver TargetResolver, assembler MessageAssembler, sender ports.MailSender, from models.Address, opts ...Option) (*Mailer, error) {
	if resolver == nil {
		return nil, errors.New("target resolver is required")
	}
	if assembler == nil {
		return nil, errors.New("message assembler is required")
	}
	if sender == nil {
		return nil, errors.New("mail sender is required")
	}
	if from.Email == "" {
		return nil, errors.New("sender address is required")
	}
	m := &Mailer{resolver: resolver, assembler: assembler, sender: sender, from: from}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Compose builds the mail for n. A nil mail with a reason means the
// notification is not mailable; that is not an error.
func (m *Mailer) Compose(ctx context.Context, n *models.Notification) (*models.Mail, models.SkipReason, error) {
	recipient, err := m.resolver.Resolve(ctx, n.TargetType, n.TargetID)
	if err != nil {
		return nil, "", err
	}
	if recipient == nil {
		return nil, models.SkipNoAddress, nil
	}

	msg, err := m.assembler.Assemble(ctx, n, *recipient)
	if err != nil {
		return nil, "", err
	}
	if msg == nil {
		return nil, models.SkipNoTemplate, nil
	}

	return &models.Mail{
		From:    m.from,
		To:      *recipient,
		ReplyTo: m.replyTo,
		Subject: msg.Subject,
		Body:    msg.Body,
		Sources: msg.Sources,
	}, "", nil
}

func (m *Mailer) Send(ctx context.Context, mail *models.Mail) error {
	if err := m.sender.Send(ctx, *mail); err != nil {
		return fmt.Errorf("sending mail to %s: %w", mail.To.Email, err)
	}
	return nil
}
