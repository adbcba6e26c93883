package alert

import (
	"bytes"
	"errors"
	"log/slog"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph/pkg/config"
)

func TestNewSelectsAlerter(t *testing.T) {
	t.Parallel()

	a := New(config.AlertConfig{Enabled: true, SMTPHost: "smtp.example.com", To: []string{"ops@example.com"}}, nil)
	assert.IsType(t, &EmailAlerter{}, a)

	a = New(config.AlertConfig{Enabled: true}, nil)
	assert.IsType(t, &LogAlerter{}, a)
}

func TestLogAlerter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	a := NewLogAlerter(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, a.Alert("breaker open", "embedding provider failing"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "breaker open")
	assert.Contains(t, buf.String(), "component=alert")
}

func TestDisabledEmailAlerterIsSilent(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewEmailAlerter(config.AlertConfig{}).Alert("s", "m"))
	assert.NoError(t, (&NoOpAlerter{}).Alert("s", "m"))
}

func TestEmailAlerterMessage(t *testing.T) {
	t.Parallel()
	cfg := config.AlertConfig{
		Enabled:  true,
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		From:     "kgraph@example.com",
		To:       []string{"ops@example.com", "oncall@example.com"},
	}
	a := NewEmailAlerter(cfg)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	a.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Nil(t, auth)
		return nil
	}

	require.NoError(t, a.Alert("breaker open", "embedding provider failing"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, cfg.To, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: [kgraph] breaker open\r\n")
	assert.Contains(t, string(gotMsg), "To: ops@example.com,oncall@example.com\r\n")

	a.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.ErrorContains(t, a.Alert("s", "m"), "failed to send alert email")
}
