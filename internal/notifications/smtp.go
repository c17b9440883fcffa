package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/angelmondragon/clothing-store-backend/pkg/config"
)

type sendMailFunc func(ctx context.Context, msgs ...*gomail.Msg) error

// SMTPSender delivers HTML mail through an SMTP relay using PLAIN auth.
type SMTPSender struct {
	host     string
	from     string
	opts     []gomail.Option
	sendMail sendMailFunc
	now      func() time.Time
}

// NewSMTPSender builds an SMTP sender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("smtp host required")
	}
	if err := gomail.NewMsg().From(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", cfg.From, err)
	}
	port := cfg.Port
	if port <= 0 {
		port = 587
	}

	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	if _, err := gomail.NewClient(host, opts...); err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	s := &SMTPSender{
		host: host,
		from: cfg.From,
		opts: opts,
		now:  time.Now,
	}
	s.sendMail = s.dialAndSend
	return s, nil
}

// dialAndSend opens one connection per call; the client keeps connection
// state and is not shared between concurrent sends.
func (s *SMTPSender) dialAndSend(ctx context.Context, msgs ...*gomail.Msg) error {
	client, err := gomail.NewClient(s.host, s.opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msgs...)
}

// Send delivers msg, aborting the SMTP session when ctx ends.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	if err := s.sendMail(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) compose(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("smtp recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now().UTC())
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}
