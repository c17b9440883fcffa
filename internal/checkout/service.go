package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/internal/cart"
	"github.com/angelmondragon/clothing-store-backend/internal/identity"
	"github.com/angelmondragon/clothing-store-backend/internal/orders"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
)

const defaultHookTimeout = 10 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service converts a user's cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error)
}

// Options carries the optional collaborators of the checkout service.
type Options struct {
	Hook        OrderPlacedHook
	HookTimeout time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.CheckoutMetrics
	Now         func() time.Time
}

type service struct {
	tx          txRunner
	cartRepo    cart.CartRepository
	ordersRepo  orders.Repository
	products    productLoader
	hook        OrderPlacedHook
	hookTimeout time.Duration
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.CartRepository,
	ordersRepo orders.Repository,
	products productLoader,
	opts Options,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if opts.Hook == nil {
		opts.Hook = noopHook{}
	}
	if opts.HookTimeout <= 0 {
		opts.HookTimeout = defaultHookTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		ordersRepo:  ordersRepo,
		products:    products,
		hook:        opts.Hook,
		hookTimeout: opts.HookTimeout,
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	dto, err := s.placeOrder(ctx, userID)
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.Rejected(string(code))
		return nil, err
	}
	s.metrics.OrderPlaced(dto.TotalPrice)
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, dto.ID.String()), map[string]any{
			"lines": len(dto.Items),
			"total": dto.TotalPrice.StringFixed(2),
		})
		s.logg.Info(logCtx, "checkout.order_placed")
	}
	s.notify(ctx, *dto)
	return dto, nil
}

func (s *service) placeOrder(ctx context.Context, userID uuid.UUID) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	record, err := s.cartRepo.FindByIdentity(ctx, identity.User(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errEmptyCart()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Lines) == 0 {
		return nil, errEmptyCart()
	}

	products, err := s.products.FindByIDs(ctx, cart.ProductIDs(record.Lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	order, err := buildOrder(userID, record.Lines, products, s.now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.cartRepo.WithTx(tx).Delete(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := orders.NewOrderDTO(*order, products)
	return &dto, nil
}

// notify runs the post-commit hook under its own deadline. The request
// context's cancellation is detached so a client disconnect does not abort it.
func (s *service) notify(ctx context.Context, order orders.OrderDTO) {
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.hookTimeout)
	defer cancel()

	if err := s.hook.OrderPlaced(hookCtx, order); err != nil && s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "checkout.hook_failed")
	}
}

// buildOrder freezes each line's current product name and price and sums the
// exact decimal total.
func buildOrder(userID uuid.UUID, lines []models.CartLine, products map[uuid.UUID]models.Product, now time.Time) (*models.Order, error) {
	total := decimal.Zero
	orderLines := make([]models.OrderLine, 0, len(lines))
	for i, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		orderLine := models.OrderLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Position:  i,
		}
		total = total.Add(orderLine.Subtotal())
		orderLines = append(orderLines, orderLine)
	}
	return &models.Order{
		UserID:     userID,
		TotalPrice: total,
		Status:     enums.OrderStatusPlaced,
		OrderDate:  now,
		Lines:      orderLines,
	}, nil
}

func errEmptyCart() error {
	return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
}
