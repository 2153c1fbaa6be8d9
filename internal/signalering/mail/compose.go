// Package mail composes notification mails and hands them to an SMTP relay.
package mail

import (
	"bytes"
	"fmt"
	"io"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"signalering/internal/signalering/models"
)

// Compose renders m as a single-part text/plain RFC 5322 message.
func Compose(m models.Mail, at time.Time) ([]byte, error) {
	var h gomail.Header
	h.SetDate(at)
	h.SetAddressList("From", []*gomail.Address{{Name: m.From.Name, Address: m.From.Email}})
	h.SetAddressList("To", []*gomail.Address{{Name: m.To.Name, Address: m.To.Email}})
	if m.ReplyTo != nil {
		h.SetAddressList("Reply-To", []*gomail.Address{{Name: m.ReplyTo.Name, Address: m.ReplyTo.Email}})
	}
	h.SetSubject(m.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if m.Sources.Case != nil && m.Sources.Case.Identification != "" {
		h.Set("X-Case-Number", m.Sources.Case.Identification)
	}

	var buf bytes.Buffer
	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, m.Body); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message body: %w", err)
	}
	return buf.Bytes(), nil
}
