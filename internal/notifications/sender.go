package notifications

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"

	"github.com/angelmondragon/clothing-store-backend/pkg/config"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
)

// Message is a rendered email ready for a transport.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (m Message) validate() error {
	if err := gomail.NewMsg().To(m.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject required")
	}
	return nil
}

// Sender delivers a message through one transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the structured log instead of delivering them.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds the development sender.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"to":         msg.To,
			"subject":    msg.Subject,
			"html_bytes": len(msg.HTML),
		}), "notification.logged")
	}
	return nil
}

// NewSender selects the transport named by cfg. The publisher is only used by
// the pubsub transport and may be nil otherwise.
func NewSender(cfg config.EmailConfig, publisher Publisher, logg *logger.Logger) (Sender, error) {
	switch cfg.NormalizedTransport() {
	case config.EmailTransportLog:
		return NewLogSender(logg), nil
	case config.EmailTransportSMTP:
		return NewSMTPSender(cfg)
	case config.EmailTransportPubSub:
		return NewPubSubSender(publisher)
	default:
		return nil, fmt.Errorf("unsupported email transport %q", cfg.Transport)
	}
}
