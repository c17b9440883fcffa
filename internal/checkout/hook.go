package checkout

import (
	"context"

	"github.com/angelmondragon/clothing-store-backend/internal/orders"
)

// OrderPlacedHook runs after the checkout transaction commits. It is invoked at
// most once per order and its error never fails the checkout.
type OrderPlacedHook interface {
	OrderPlaced(ctx context.Context, order orders.OrderDTO) error
}

// HookFunc adapts a function to OrderPlacedHook.
type HookFunc func(ctx context.Context, order orders.OrderDTO) error

func (f HookFunc) OrderPlaced(ctx context.Context, order orders.OrderDTO) error {
	return f(ctx, order)
}

type noopHook struct{}

func (noopHook) OrderPlaced(context.Context, orders.OrderDTO) error { return nil }
