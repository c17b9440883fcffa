package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/internal/identity"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByIdentity(ctx context.Context, owner identity.Identity) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Touch(ctx context.Context, cartID uuid.UUID) error
	IncrementLine(ctx context.Context, cartID, productID uuid.UUID, size string, delta int) (bool, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	SetLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) error
	Delete(ctx context.Context, cartID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}
