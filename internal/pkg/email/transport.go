// internal/pkg/email/transport.go
package email

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/atelier-textile/storefront-api/internal/config"
	"github.com/sirupsen/logrus"
)

// NewTransport builds the transport selected by EMAIL_TRANSPORT
func NewTransport(cfg config.EmailConfig, logger logrus.FieldLogger) (Transport, error) {
	switch cfg.Transport {
	case "smtp":
		return NewSMTPTransport(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			UseTLS:   cfg.SMTPUseTLS,
		})
	case "resend":
		return NewResendTransport(cfg.APIKey, cfg.APIBaseURL, &http.Client{Timeout: 30 * time.Second})
	case "log", "":
		return NewLogTransport(logger), nil
	default:
		return nil, fmt.Errorf("unsupported email transport: %s", cfg.Transport)
	}
}

// LogHistorySize is how many recent messages a LogTransport keeps
const LogHistorySize = 50

// LogTransport writes messages to the log instead of delivering them.
// The last LogHistorySize messages are kept in memory for inspection.
type LogTransport struct {
	mu     sync.Mutex
	logger logrus.FieldLogger
	sent   []Message
	// Err makes every Send fail
	Err error
}

// NewLogTransport creates a log transport
func NewLogTransport(logger logrus.FieldLogger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send records msg
func (t *LogTransport) Send(_ context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	if len(t.sent) >= LogHistorySize {
		t.sent = append(t.sent[:0], t.sent[len(t.sent)-LogHistorySize+1:]...)
	}
	t.sent = append(t.sent, *msg)

	if t.logger != nil {
		t.logger.WithFields(logrus.Fields{
			"type":    msg.Type,
			"to":      msg.To,
			"subject": msg.Subject,
		}).Info("Email not delivered (log transport)")
	}
	return nil
}

// Sent returns a copy of the recorded messages, oldest first
func (t *LogTransport) Sent() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Message(nil), t.sent...)
}
