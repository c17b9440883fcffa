package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/types"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SummaryDTO is the product view embedded in cart and order lines.
type SummaryDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl"`
	Category string          `json:"category"`
	Sizes    []string        `json:"sizes"`
}

// ProductListResult is one catalog page.
type ProductListResult struct {
	Products []ProductDTO `json:"products"`
	types.PageMeta
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category.String(),
		Sizes:       append([]string{}, p.Sizes...),
		CreatedAt:   p.CreatedAt,
	}
}

// NewSummaryDTO builds the compact product view.
func NewSummaryDTO(p models.Product) *SummaryDTO {
	return &SummaryDTO{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Category: p.Category.String(),
		Sizes:    append([]string{}, p.Sizes...),
	}
}
