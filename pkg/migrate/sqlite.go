package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for the embedded SQLite driver.
// Postgres-only features (enums, arrays, trigram indexes) are flattened to
// TEXT and NUMERIC columns; the single-owner CHECK on carts is kept.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		last_login_at DATETIME NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		price NUMERIC NOT NULL CHECK (price >= 0),
		image_url TEXT NOT NULL,
		category TEXT NOT NULL,
		sizes TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id TEXT PRIMARY KEY,
		user_id TEXT NULL UNIQUE,
		session_id TEXT NULL UNIQUE,
		created_at DATETIME,
		updated_at DATETIME,
		CHECK ((user_id IS NULL) <> (session_id IS NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS cart_lines (
		id TEXT PRIMARY KEY,
		cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		size TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		position INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (cart_id, product_id, size)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		total_price NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'placed',
		order_date DATETIME NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		unit_price NUMERIC NOT NULL,
		size TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		position INTEGER NOT NULL
	)`,
}

// ApplySQLiteSchema creates the storefront tables on a SQLite connection.
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
