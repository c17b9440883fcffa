package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
)

// Product represents a catalog listing.
type Product struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string                `gorm:"column:name;not null"`
	Description string                `gorm:"column:description;not null"`
	Price       decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL    string                `gorm:"column:image_url;not null"`
	Category    enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Sizes       pq.StringArray        `gorm:"column:sizes;type:text[];not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// OffersSize reports whether size is part of the product's size set.
func (p Product) OffersSize(size enums.ProductSize) bool {
	for _, s := range p.Sizes {
		if s == string(size) {
			return true
		}
	}
	return false
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
