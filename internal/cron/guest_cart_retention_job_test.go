package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/clothing-store-backend/internal/cart"
	product "github.com/angelmondragon/clothing-store-backend/internal/products"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/dbtest"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGuestCartRetentionDeletesOnlyStaleGuestCarts(t *testing.T) {
	client := dbtest.OpenClient(t)
	conn := client.DB()
	ctx := context.Background()
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	tee := models.Product{Name: "Tee", Description: "Tee", Price: decimal.RequireFromString("10.00"), ImageURL: "https://img/tee", Category: enums.ProductCategoryMen, Sizes: []string{"M"}}
	require.NoError(t, product.NewRepository(conn).Create(ctx, &tee))

	repo := cart.NewRepository(conn)
	staleSession, freshSession := "stale-guest", "fresh-guest"
	userID := uuid.New()
	staleGuest := &models.Cart{SessionID: &staleSession}
	freshGuest := &models.Cart{SessionID: &freshSession}
	oldUser := &models.Cart{UserID: &userID}
	for _, c := range []*models.Cart{staleGuest, freshGuest, oldUser} {
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, repo.CreateLine(ctx, &models.CartLine{CartID: c.ID, ProductID: tee.ID, Size: "M", Quantity: 1}))
	}
	setUpdatedAt(t, conn, staleGuest.ID, now.AddDate(0, 0, -31))
	setUpdatedAt(t, conn, freshGuest.ID, now.AddDate(0, 0, -29))
	setUpdatedAt(t, conn, oldUser.ID, now.AddDate(0, 0, -90))

	buf := &bytes.Buffer{}
	jobIface, err := NewGuestCartRetentionJob(GuestCartRetentionJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test", Output: buf}),
		DB:     client,
	})
	require.NoError(t, err)
	job := jobIface.(*guestCartRetentionJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(ctx))
	require.Contains(t, buf.String(), `"carts_deleted":1`)

	var remaining []models.Cart
	require.NoError(t, conn.Order("created_at").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	require.ElementsMatch(t, []uuid.UUID{freshGuest.ID, oldUser.ID}, ids)

	var orphanLines int64
	require.NoError(t, conn.Model(&models.CartLine{}).Where("cart_id = ?", staleGuest.ID).Count(&orphanLines).Error)
	require.Zero(t, orphanLines)
}

func TestGuestCartRetentionPropagatesErrors(t *testing.T) {
	jobIface, err := NewGuestCartRetentionJob(GuestCartRetentionJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}),
		DB:     passthroughTx{},
	})
	require.NoError(t, err)
	job := jobIface.(*guestCartRetentionJob)
	job.carts = func(*gorm.DB) staleCartDeleter { return failingDeleter{} }

	require.Error(t, job.Run(context.Background()))
	require.Equal(t, guestCartRetentionDays, job.retention)
}

func TestNewGuestCartRetentionJobValidates(t *testing.T) {
	_, err := NewGuestCartRetentionJob(GuestCartRetentionJobParams{DB: passthroughTx{}})
	require.Error(t, err)
	_, err = NewGuestCartRetentionJob(GuestCartRetentionJobParams{Logger: logger.New(logger.Options{ServiceName: "test"})})
	require.Error(t, err)
}

func setUpdatedAt(t *testing.T, conn *gorm.DB, cartID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, conn.Model(&models.Cart{}).Where("id = ?", cartID).UpdateColumn("updated_at", at).Error)
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type failingDeleter struct{}

func (failingDeleter) DeleteStaleGuestCarts(context.Context, time.Time) (int64, error) {
	return 0, errors.New("boom")
}
