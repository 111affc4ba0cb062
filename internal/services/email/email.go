// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/langeng/internal/config"
	"github.com/wneessen/go-mail"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages. Send errors abort the flow that requested
// the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HashToken computes the SHA256 hash of a token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// NewSender returns an SMTP sender when SMTP is configured and a logging
// sender otherwise.
func NewSender(cfg *config.SMTPConfig) (Sender, error) {
	if !cfg.Enabled() {
		slog.Warn("smtp_disabled", "reason", "no smtp host configured, emails are logged")
		return LogSender{}, nil
	}
	return NewSMTPSender(cfg)
}

// SMTPSender sends mail through an SMTP server using go-mail.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(cfg *config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) buildMsg(m Message) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(m.Subject)
	if m.Text != "" {
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	} else {
		msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	}
	return msg, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Implicit TLS on 465, STARTTLS elsewhere
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

// Send delivers m via SMTP.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg, err := s.buildMsg(m)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	slog.Info("email_sent", "to", m.To, "subject", m.Subject)
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct{}

// Send logs m at info level.
func (LogSender) Send(ctx context.Context, m Message) error {
	slog.InfoContext(ctx, "email_logged", "to", m.To, "subject", m.Subject, "body", m.Text)
	return nil
}
