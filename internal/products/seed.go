package product

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
)

//go:embed catalog.json
var catalogJSON []byte

type catalogEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
}

// SeedCatalog returns the built-in starter catalog as unsaved product rows.
func SeedCatalog() ([]models.Product, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(catalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}

	products := make([]models.Product, 0, len(entries))
	for i, entry := range entries {
		category, err := enums.ParseProductCategory(entry.Category)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		sizes := make([]string, 0, len(entry.Sizes))
		for _, raw := range entry.Sizes {
			size, err := enums.ParseProductSize(raw)
			if err != nil {
				return nil, fmt.Errorf("seed entry %d: %w", i, err)
			}
			sizes = append(sizes, size.String())
		}
		products = append(products, models.Product{
			Name:        entry.Name,
			Description: entry.Description,
			Price:       entry.Price,
			ImageURL:    entry.ImageURL,
			Category:    category,
			Sizes:       sizes,
		})
	}
	return products, nil
}

// Seed replaces the catalog with the built-in products and returns how many were written.
func Seed(ctx context.Context, repo *Repository) (int, error) {
	products, err := SeedCatalog()
	if err != nil {
		return 0, err
	}
	if err := repo.ReplaceAll(ctx, products); err != nil {
		return 0, fmt.Errorf("replace catalog: %w", err)
	}
	return len(products), nil
}
