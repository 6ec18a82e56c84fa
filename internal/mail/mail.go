// Package mail delivers one-time codes to users.
//
// The orchestrator depends on the Sender interface, not a concrete
// transport, so tests swap in a capture fake and local development
// runs without an SMTP server at all.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers a one-time code to an email address.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}

// SMTPSender sends codes through a plain SMTP relay.
//
// Addr is host:port of the relay (e.g. "localhost:1025" for a local
// mailcatcher). No auth is configured — deployments front this with a
// relay that handles credentials and TLS.
type SMTPSender struct {
	Addr string
	From string
}

var _ Sender = (*SMTPSender)(nil)

// SendCode sends a minimal plain-text message carrying the code.
func (s *SMTPSender) SendCode(ctx context.Context, email, code string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	msg.WriteString("Subject: Your verification code\r\n")
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "Your verification code is %s. It expires shortly; if you didn't request it, ignore this message.\r\n", code)

	if err := smtp.SendMail(s.Addr, nil, s.From, []string{email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: sending code to %s: %w", email, err)
	}
	return nil
}

// LogSender "delivers" codes by logging them. Development fallback for
// when no SMTP relay is configured — the code still has to reach the
// person driving the browser somehow.
//
// Logging a live credential is acceptable only because this sender is
// never selected when SMTP_ADDR is set.
type LogSender struct {
	Logger *slog.Logger
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) SendCode(ctx context.Context, email, code string) error {
	s.Logger.Info("OTP issued (no SMTP configured, logging instead)",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
