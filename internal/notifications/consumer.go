package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
)

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// Consumer drains queued emails and delivers them. Every message is acked
// whether or not delivery succeeds, so each email is attempted at most once.
type Consumer struct {
	subscription receiver
	sender       Sender
	logg         *logger.Logger
	metrics      *metrics.NotificationMetrics
	transport    string
}

// NewConsumer builds the notification worker consumer.
func NewConsumer(subscription receiver, sender Sender, transport string, logg *logger.Logger, m *metrics.NotificationMetrics) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		sender:       sender,
		logg:         logg,
		metrics:      m,
		transport:    transport,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		c.handle(ctx, msg.ID, msg.Attributes, msg.Data)
		msg.Ack()
	})
}

func (c *Consumer) handle(ctx context.Context, id string, attrs map[string]string, data []byte) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": id,
		"transport":  c.transport,
	})

	if kind := attrs["type"]; kind != "" && kind != messageTypeEmail {
		c.logg.Info(logCtx, "skipping non-email message")
		return nil
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.metrics.Failed(c.transport)
		c.logg.Error(logCtx, "notification.failed", fmt.Errorf("decode message: %w", err))
		return err
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		c.metrics.Failed(c.transport)
		c.logg.Error(logCtx, "notification.failed", err)
		return err
	}
	c.metrics.Sent(c.transport)
	c.logg.Info(logCtx, "notification.sent")
	return nil
}
