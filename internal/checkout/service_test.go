package checkout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/internal/cart"
	"github.com/angelmondragon/clothing-store-backend/internal/identity"
	"github.com/angelmondragon/clothing-store-backend/internal/orders"
	product "github.com/angelmondragon/clothing-store-backend/internal/products"
	"github.com/angelmondragon/clothing-store-backend/pkg/db"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/dbtest"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
)

type harness struct {
	client   *db.Client
	carts    cart.Service
	cartRepo *cart.Repository
	orders   orders.Repository
	products *product.Repository
	shirt    models.Product
	scarf    models.Product
}

func newHarness(t *testing.T) harness {
	t.Helper()
	client := dbtest.OpenClient(t)
	products := product.NewRepository(client.DB())
	cartRepo := cart.NewRepository(client.DB())
	carts, err := cart.NewService(cartRepo, client, products)
	require.NoError(t, err)

	shirt := models.Product{Name: "Oxford Shirt", Description: "d", Price: decimal.RequireFromString("10.00"), ImageURL: "https://img/shirt", Category: enums.ProductCategoryMen, Sizes: []string{"M", "L"}}
	scarf := models.Product{Name: "Wool Scarf", Description: "d", Price: decimal.RequireFromString("5.50"), ImageURL: "https://img/scarf", Category: enums.ProductCategoryWomen, Sizes: []string{"S"}}
	require.NoError(t, products.Create(context.Background(), &shirt))
	require.NoError(t, products.Create(context.Background(), &scarf))

	return harness{
		client:   client,
		carts:    carts,
		cartRepo: cartRepo,
		orders:   orders.NewRepository(client.DB()),
		products: products,
		shirt:    shirt,
		scarf:    scarf,
	}
}

func (h harness) service(t *testing.T, opts Options) Service {
	t.Helper()
	svc, err := NewService(h.client, h.cartRepo, h.orders, h.products, opts)
	require.NoError(t, err)
	return svc
}

func (h harness) fillCart(t *testing.T, userID uuid.UUID) {
	t.Helper()
	two := 2
	owner := identity.User(userID)
	_, err := h.carts.AddLine(context.Background(), owner, cart.AddLineInput{ProductID: h.shirt.ID, Size: "M", Quantity: &two})
	require.NoError(t, err)
	_, err = h.carts.AddLine(context.Background(), owner, cart.AddLineInput{ProductID: h.scarf.ID, Size: "S"})
	require.NoError(t, err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	h := newHarness(t)
	_, err := NewService(nil, h.cartRepo, h.orders, h.products, Options{})
	require.Error(t, err)
	_, err = NewService(h.client, nil, h.orders, h.products, Options{})
	require.Error(t, err)
	_, err = NewService(h.client, h.cartRepo, nil, h.products, Options{})
	require.Error(t, err)
	_, err = NewService(h.client, h.cartRepo, h.orders, nil, Options{})
	require.Error(t, err)
}

func TestPlaceOrderSnapshotsCartAndDeletesIt(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.fillCart(t, userID)
	fixed := time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC)

	var hooked []orders.OrderDTO
	svc := h.service(t, Options{
		Hook: HookFunc(func(_ context.Context, order orders.OrderDTO) error {
			hooked = append(hooked, order)
			return nil
		}),
		Now: func() time.Time { return fixed },
	})

	order, err := svc.PlaceOrder(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, order.TotalPrice.Equal(decimal.RequireFromString("25.50")), "total %s", order.TotalPrice)
	require.Equal(t, "placed", order.Status)
	require.Equal(t, fixed, order.OrderDate)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Oxford Shirt", order.Items[0].Name)
	require.Equal(t, 2, order.Items[0].Quantity)
	require.NotNil(t, order.Items[0].Product)

	require.Len(t, hooked, 1)
	require.Equal(t, order.ID, hooked[0].ID)

	_, err = h.cartRepo.FindByIdentity(context.Background(), identity.User(userID))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	stored, err := h.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("25.50")))
	require.Len(t, stored.Lines, 2)
}

func TestPlaceOrderRejectsEmptyOrMissingCart(t *testing.T) {
	h := newHarness(t)
	svc := h.service(t, Options{})
	userID := uuid.New()

	_, err := svc.PlaceOrder(context.Background(), userID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart))

	cartDTO, err := h.carts.AddLine(context.Background(), identity.User(userID), cart.AddLineInput{ProductID: h.shirt.ID, Size: "L"})
	require.NoError(t, err)
	_, err = h.carts.RemoveLine(context.Background(), identity.User(userID), cartDTO.Items[0].ID)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyCart))

	rows, total, err := h.orders.ListByUser(context.Background(), userID, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Zero(t, total)
}

func TestPlaceOrderSwallowsHookFailure(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.fillCart(t, userID)

	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	svc := h.service(t, Options{
		Hook: HookFunc(func(context.Context, orders.OrderDTO) error {
			return errors.New("smtp unavailable")
		}),
		Logger: logg,
	})

	order, err := svc.PlaceOrder(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, order)
	require.True(t, strings.Contains(buf.String(), "checkout.hook_failed"), buf.String())
	require.True(t, strings.Contains(buf.String(), "smtp unavailable"), buf.String())
}

func TestPlaceOrderHookGetsDeadline(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.fillCart(t, userID)

	var deadline time.Time
	svc := h.service(t, Options{
		HookTimeout: time.Second,
		Hook: HookFunc(func(ctx context.Context, _ orders.OrderDTO) error {
			deadline, _ = ctx.Deadline()
			return nil
		}),
	})

	_, err := svc.PlaceOrder(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, deadline.IsZero())
	require.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestOrderTotalIsStableAfterPriceChange(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.fillCart(t, userID)
	svc := h.service(t, Options{})

	order, err := svc.PlaceOrder(context.Background(), userID)
	require.NoError(t, err)

	require.NoError(t, h.client.DB().Exec("UPDATE products SET price = ? WHERE id = ?", "99.99", h.shirt.ID).Error)

	stored, err := h.orders.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("25.50")))
	require.True(t, stored.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestPlaceOrderFailsWhenProductWasRemoved(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.fillCart(t, userID)
	svc := h.service(t, Options{})

	stub := &missingProducts{inner: h.products, missing: h.scarf.ID}
	svc.(*service).products = stub

	_, err := svc.PlaceOrder(context.Background(), userID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = h.cartRepo.FindByIdentity(context.Background(), identity.User(userID))
	require.NoError(t, err)
}

type missingProducts struct {
	inner   productLoader
	missing uuid.UUID
}

func (m *missingProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	found, err := m.inner.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	delete(found, m.missing)
	return found, nil
}

type failingOrders struct {
	orders.Repository
}

func (f failingOrders) WithTx(*gorm.DB) orders.Repository { return f }

func (failingOrders) Create(context.Context, *models.Order) error {
	return errors.New("insert failed")
}

func TestFailedOrderInsertKeepsCart(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	h.fillCart(t, userID)

	reg := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)
	svc, err := NewService(h.client, h.cartRepo, failingOrders{}, h.products, Options{Metrics: checkoutMetrics})
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))

	record, err := h.cartRepo.FindByIdentity(context.Background(), identity.User(userID))
	require.NoError(t, err)
	require.Len(t, record.Lines, 2)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var rejected float64
	for _, mf := range mfs {
		if mf.GetName() != "clothing_store_checkout_rejected_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			rejected += m.GetCounter().GetValue()
		}
	}
	require.Equal(t, float64(1), rejected)
}
