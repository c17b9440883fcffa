package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/clothing-store-backend/internal/products"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
)

// CartDTO is the cart payload returned to clients.
type CartDTO struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"userId,omitempty"`
	SessionID  *string         `json:"sessionId,omitempty"`
	Items      []CartItemDTO   `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CartItemDTO is a cart line with its product resolved for display.
type CartItemDTO struct {
	ID        uuid.UUID           `json:"id"`
	ProductID uuid.UUID           `json:"productId"`
	Product   *product.SummaryDTO `json:"product"`
	Size      string              `json:"size"`
	Quantity  int                 `json:"quantity"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
}

// NewCartDTO renders a cart using the provided product lookup. Lines whose
// product has been removed keep a nil product and contribute nothing to the total.
func NewCartDTO(cart models.Cart, products map[uuid.UUID]models.Product) CartDTO {
	dto := CartDTO{
		ID:         cart.ID,
		UserID:     cart.UserID,
		SessionID:  cart.SessionID,
		Items:      make([]CartItemDTO, 0, len(cart.Lines)),
		TotalPrice: decimal.Zero,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
	for _, line := range cart.Lines {
		item := CartItemDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Subtotal:  decimal.Zero,
		}
		if p, ok := products[line.ProductID]; ok {
			item.Product = product.NewSummaryDTO(p)
			item.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		}
		dto.TotalItems += line.Quantity
		dto.TotalPrice = dto.TotalPrice.Add(item.Subtotal)
		dto.Items = append(dto.Items, item)
	}
	return dto
}

// ProductIDs lists the distinct products referenced by the cart lines.
func ProductIDs(lines []models.CartLine) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	out := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		out = append(out, line.ProductID)
	}
	return out
}
