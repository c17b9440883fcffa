package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/internal/identity"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByIdentity loads the cart owned by the identity with its lines in position order.
func (r *Repository) FindByIdentity(ctx context.Context, owner identity.Identity) (*models.Cart, error) {
	query := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if userID, ok := owner.UserID(); ok {
		query = query.Where("user_id = ?", userID)
	} else if sessionID, ok := owner.SessionID(); ok {
		query = query.Where("session_id = ?", sessionID)
	} else {
		return nil, fmt.Errorf("cart lookup requires a user or session identity")
	}

	var cart models.Cart
	if err := query.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart. Exactly one of UserID and SessionID must be set.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if (cart.UserID == nil) == (cart.SessionID == nil) {
		return fmt.Errorf("cart must have exactly one of user id or session id")
	}
	return r.db.WithContext(ctx).Create(cart).Error
}

// Touch bumps updated_at so guest retention sees the cart as active.
func (r *Repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now().UTC()).Error
}

// IncrementLine adds delta to the line matching (product, size) and reports
// whether such a line existed.
func (r *Repository) IncrementLine(ctx context.Context, cartID, productID uuid.UUID, size string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("cart_id = ? AND product_id = ? AND size = ?", cartID, productID, size).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateLine appends a new line.
func (r *Repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// SetLineQuantity overwrites the quantity of a line in the cart.
func (r *Repository) SetLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Updates(map[string]any{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLine removes a line from the cart.
func (r *Repository) DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the cart and its lines.
func (r *Repository) Delete(ctx context.Context, cartID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartLine{}).Error; err != nil {
		return err
	}
	res := tx.Where("id = ?", cartID).Delete(&models.Cart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteStaleGuestCarts removes guest carts untouched since cutoff together
// with their lines and reports how many carts were dropped.
func (r *Repository) DeleteStaleGuestCarts(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx)
	stale := tx.Model(&models.Cart{}).
		Select("id").
		Where("session_id IS NOT NULL AND updated_at < ?", cutoff)

	if err := tx.Where("cart_id IN (?)", stale).Delete(&models.CartLine{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("session_id IS NOT NULL AND updated_at < ?", cutoff).Delete(&models.Cart{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
