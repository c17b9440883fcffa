package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/clothing-store-backend/internal/products"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/types"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	Items      []OrderItemDTO  `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status"`
	OrderDate  time.Time       `json:"orderDate"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// OrderItemDTO is a frozen order line. Product is set only while the product
// still exists; Name and Price always reflect the snapshot.
type OrderItemDTO struct {
	ID        uuid.UUID           `json:"id"`
	ProductID uuid.UUID           `json:"productId"`
	Product   *product.SummaryDTO `json:"product,omitempty"`
	Name      string              `json:"name"`
	Price     decimal.Decimal     `json:"price"`
	Size      string              `json:"size"`
	Quantity  int                 `json:"quantity"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
}

// OrderListResult is one page of a user's order history.
type OrderListResult struct {
	Orders []OrderDTO `json:"orders"`
	types.PageMeta
}

// NewOrderDTO renders an order, resolving product summaries from products.
func NewOrderDTO(order models.Order, products map[uuid.UUID]models.Product) OrderDTO {
	dto := OrderDTO{
		ID:         order.ID,
		UserID:     order.UserID,
		Items:      make([]OrderItemDTO, 0, len(order.Lines)),
		TotalPrice: order.TotalPrice,
		Status:     order.Status.String(),
		OrderDate:  order.OrderDate,
		CreatedAt:  order.CreatedAt,
	}
	for _, line := range order.Lines {
		item := OrderItemDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		}
		if p, ok := products[line.ProductID]; ok {
			item.Product = product.NewSummaryDTO(p)
		}
		dto.Items = append(dto.Items, item)
	}
	return dto
}

// ProductIDs lists the distinct products referenced by the given orders.
func ProductIDs(orders ...models.Order) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, order := range orders {
		for _, line := range order.Lines {
			if _, ok := seen[line.ProductID]; ok {
				continue
			}
			seen[line.ProductID] = struct{}{}
			out = append(out, line.ProductID)
		}
	}
	return out
}
