package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/clothing-store-backend/internal/cart"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	guestCartRetentionJobName = "guest-cart-retention"
	guestCartRetentionDays    = 30
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type staleCartDeleter interface {
	DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error)
}

// GuestCartRetentionJobParams wires the guest cart sweep.
type GuestCartRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Metrics       *metrics.CronJobMetrics
	RetentionDays int
}

// NewGuestCartRetentionJob drops guest carts whose last change is older than
// the retention window. User carts are never touched.
func NewGuestCartRetentionJob(params GuestCartRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = guestCartRetentionDays
	}
	return &guestCartRetentionJob{
		logg:      params.Logger,
		db:        params.DB,
		metrics:   params.Metrics,
		retention: retention,
		carts: func(tx *gorm.DB) staleCartDeleter {
			return cart.NewRepository(tx)
		},
		now: time.Now,
	}, nil
}

type guestCartRetentionJob struct {
	logg      *logger.Logger
	db        txRunner
	metrics   *metrics.CronJobMetrics
	retention int
	carts     func(tx *gorm.DB) staleCartDeleter
	now       func() time.Time
}

func (j *guestCartRetentionJob) Name() string { return guestCartRetentionJobName }

func (j *guestCartRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.carts(tx).DeleteStaleGuestCarts(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("guest cart retention: %w", err)
	}

	j.metrics.AddRowsDeleted(j.Name(), deleted)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"carts_deleted":  deleted,
	})
	j.logg.Info(logCtx, "cron.guest_carts_pruned")
	return nil
}
