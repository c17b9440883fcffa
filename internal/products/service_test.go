package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	rows       []models.Product
	total      int64
	err        error
	lastPage   pagination.Params
	byID       map[uuid.UUID]models.Product
	categories []enums.ProductCategory
}

func (s *stubCatalogRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (s *stubCatalogRepo) List(_ context.Context, _ ListFilters, page pagination.Params) ([]models.Product, int64, error) {
	s.lastPage = page
	return s.rows, s.total, s.err
}

func (s *stubCatalogRepo) Categories(context.Context) ([]enums.ProductCategory, error) {
	return s.categories, s.err
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestServiceListAppliesDefaultsAndPageMeta(t *testing.T) {
	repo := &stubCatalogRepo{
		rows: []models.Product{
			{ID: uuid.New(), Name: "Tee", Price: decimal.RequireFromString("24.99"), Category: enums.ProductCategoryMen, Sizes: []string{"M"}},
		},
		total: 25,
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), ListProductsInput{})
	require.NoError(t, err)
	require.Equal(t, pagination.Params{Page: 1, Limit: DefaultListLimit}, repo.lastPage)
	require.Equal(t, 1, result.Count)
	require.Equal(t, int64(25), result.Total)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 3, result.Pages)
	require.Equal(t, "Men", result.Products[0].Category)
	require.Equal(t, []string{"M"}, result.Products[0].Sizes)
}

func TestServiceListWrapsRepositoryErrors(t *testing.T) {
	svc, err := NewService(&stubCatalogRepo{err: errors.New("connection reset")})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListProductsInput{})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestServiceGet(t *testing.T) {
	id := uuid.New()
	repo := &stubCatalogRepo{byID: map[uuid.UUID]models.Product{
		id: {ID: id, Name: "Dress", Price: decimal.RequireFromString("69.99"), Category: enums.ProductCategoryWomen},
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Dress", dto.Name)

	_, err = svc.Get(context.Background(), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestServiceCategories(t *testing.T) {
	svc, err := NewService(&stubCatalogRepo{categories: []enums.ProductCategory{enums.ProductCategoryMen, enums.ProductCategoryKids}})
	require.NoError(t, err)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Men", "Kids"}, categories)
}

func TestParseListQuery(t *testing.T) {
	input, err := ParseListQuery(RawListQuery{
		Search:   "  jeans ",
		Category: "women",
		Size:     "xl",
		MinPrice: "10",
		MaxPrice: "50.5",
		Page:     2,
		Limit:    6,
	})
	require.NoError(t, err)
	require.Equal(t, "jeans", input.Filters.Search)
	require.Equal(t, enums.ProductCategoryWomen, *input.Filters.Category)
	require.Equal(t, enums.ProductSizeXL, *input.Filters.Size)
	require.True(t, input.Filters.MaxPrice.Equal(decimal.RequireFromString("50.5")))
	require.Equal(t, pagination.Params{Page: 2, Limit: 6}, input.Pagination)

	invalid := []RawListQuery{
		{Category: "Pets"},
		{Size: "XXL"},
		{MinPrice: "cheap"},
		{MaxPrice: "-1"},
		{MinPrice: "80", MaxPrice: "20"},
	}
	for _, raw := range invalid {
		_, err := ParseListQuery(raw)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), "expected validation error for %+v", raw)
	}
}

func TestSeedCatalogDecodes(t *testing.T) {
	products, err := SeedCatalog()
	require.NoError(t, err)
	require.Len(t, products, 15)
	for _, p := range products {
		require.NotEmpty(t, p.Name)
		require.True(t, p.Price.IsPositive())
		require.NotEmpty(t, p.Sizes)
	}
}
