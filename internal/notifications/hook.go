package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/clothing-store-backend/internal/orders"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
)

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// OrderConfirmation emails the customer after checkout commits.
type OrderConfirmation struct {
	users     userLoader
	sender    Sender
	transport string
	logg      *logger.Logger
	metrics   *metrics.NotificationMetrics
}

// NewOrderConfirmation wires the confirmation hook. transport labels metrics.
func NewOrderConfirmation(users userLoader, sender Sender, transport string, logg *logger.Logger, m *metrics.NotificationMetrics) (*OrderConfirmation, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &OrderConfirmation{
		users:     users,
		sender:    sender,
		transport: transport,
		logg:      logg,
		metrics:   m,
	}, nil
}

// OrderPlaced renders and sends the confirmation. Failures are logged,
// counted and returned; callers treat them as non-fatal.
func (h *OrderConfirmation) OrderPlaced(ctx context.Context, order orders.OrderDTO) error {
	logCtx := h.logg.WithOrderID(ctx, order.ID.String())
	logCtx = h.logg.WithField(logCtx, "transport", h.transport)

	user, err := h.users.FindByID(ctx, order.UserID)
	if err != nil {
		return h.fail(logCtx, fmt.Errorf("load recipient: %w", err))
	}
	html, err := RenderOrderConfirmation(order, user.Name)
	if err != nil {
		return h.fail(logCtx, err)
	}

	msg := Message{
		To:      user.Email,
		Subject: OrderConfirmationSubject(order),
		HTML:    html,
	}
	if err := h.sender.Send(ctx, msg); err != nil {
		return h.fail(logCtx, err)
	}

	h.metrics.Sent(h.transport)
	h.logg.Info(logCtx, "notification.sent")
	return nil
}

func (h *OrderConfirmation) fail(ctx context.Context, err error) error {
	h.metrics.Failed(h.transport)
	h.logg.Error(ctx, "notification.failed", err)
	return err
}
