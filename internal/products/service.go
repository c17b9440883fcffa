package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
	"github.com/angelmondragon/clothing-store-backend/pkg/types"
)

// Service exposes read-only catalog operations.
type Service interface {
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Categories(ctx context.Context) ([]string, error)
}

type catalogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filters ListFilters, page pagination.Params) ([]models.Product, int64, error)
	Categories(ctx context.Context) ([]enums.ProductCategory, error)
}

type service struct {
	repo catalogRepository
}

// NewService constructs the catalog service.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	page := pagination.Normalize(input.Pagination, DefaultListLimit)
	rows, total, err := s.repo.List(ctx, input.Filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, NewProductDTO(row))
	}
	return &ProductListResult{
		Products: items,
		PageMeta: types.PageMeta{
			Count: len(items),
			Total: total,
			Page:  page.Page,
			Pages: pagination.Pages(total, page.Limit),
		},
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	dto := NewProductDTO(*row)
	return &dto, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]string, 0, len(categories))
	for _, category := range categories {
		out = append(out, category.String())
	}
	return out, nil
}

// RawListQuery carries unparsed query-string values from the browse endpoint.
type RawListQuery struct {
	Search   string
	Category string
	Size     string
	MinPrice string
	MaxPrice string
	Page     int
	Limit    int
}

// ParseListQuery validates raw browse parameters into a ListProductsInput.
func ParseListQuery(raw RawListQuery) (ListProductsInput, error) {
	input := ListProductsInput{
		Filters:    ListFilters{Search: strings.TrimSpace(raw.Search)},
		Pagination: pagination.Params{Page: raw.Page, Limit: raw.Limit},
	}

	if value := strings.TrimSpace(raw.Category); value != "" {
		category, err := enums.ParseProductCategory(value)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", value))
		}
		input.Filters.Category = &category
	}
	if value := strings.TrimSpace(raw.Size); value != "" {
		size, err := enums.ParseProductSize(value)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid size %q", value))
		}
		input.Filters.Size = &size
	}

	minPrice, err := parsePrice("minPrice", raw.MinPrice)
	if err != nil {
		return input, err
	}
	maxPrice, err := parsePrice("maxPrice", raw.MaxPrice)
	if err != nil {
		return input, err
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}
	input.Filters.MinPrice = minPrice
	input.Filters.MaxPrice = maxPrice
	return input, nil
}

func parsePrice(field, value string) (*decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(value)
	if err != nil || price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a non-negative number", field))
	}
	return &price, nil
}
