// Package alert notifies operators when a collaborator such as an embedding
// provider starts failing.
package alert

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/soundprediction/kgraph/pkg/config"
)

// Alerter defines an interface for sending alerts
type Alerter interface {
	Alert(subject, message string) error
}

// New returns an EmailAlerter when alerting is enabled and a LogAlerter
// otherwise.
func New(cfg config.AlertConfig, logger *slog.Logger) Alerter {
	if cfg.Enabled && cfg.SMTPHost != "" && len(cfg.To) > 0 {
		return NewEmailAlerter(cfg)
	}
	return NewLogAlerter(logger)
}

// SubjectPrefix is prepended to every emailed subject.
const SubjectPrefix = "[kgraph] "

// EmailAlerter sends alerts through an SMTP relay.
type EmailAlerter struct {
	cfg  config.AlertConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg, send: smtp.SendMail}
}

// Alert mails subject and message to every configured recipient.
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}
	var auth smtp.Auth
	if a.cfg.Username != "" {
		auth = smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)
	if err := a.send(addr, auth, a.cfg.From, a.cfg.To, a.message(subject, message)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func (a *EmailAlerter) message(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", a.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(a.cfg.To, ","))
	fmt.Fprintf(&b, "Subject: %s%s\r\n", SubjectPrefix, subject)
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogAlerter writes alerts to a logger at error level.
type LogAlerter struct {
	logger *slog.Logger
}

// NewLogAlerter tags records with component=alert. A nil logger uses
// slog.Default().
func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogAlerter{logger: logger.With("component", "alert")}
}

func (a *LogAlerter) Alert(subject, message string) error {
	a.logger.Error(subject, "message", message)
	return nil
}

// NoOpAlerter drops every alert.
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}
