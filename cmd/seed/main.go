package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	product "github.com/angelmondragon/clothing-store-backend/internal/products"
	"github.com/angelmondragon/clothing-store-backend/pkg/config"
	"github.com/angelmondragon/clothing-store-backend/pkg/db"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
	"github.com/angelmondragon/clothing-store-backend/pkg/migrate"
)

// seed replaces the product catalog with the bundled one. Existing carts and
// orders that reference removed products are left as they are.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	count, err := product.Seed(ctx, product.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to seed catalog", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "products", count), "catalog seeded")
}
