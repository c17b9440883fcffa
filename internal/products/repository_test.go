package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/clothing-store-backend/pkg/db/dbtest"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
)

func seedProducts(t *testing.T, repo *Repository) []models.Product {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.Product{
		{Name: "Classic Denim Jeans", Description: "Premium denim", Price: decimal.RequireFromString("59.99"), ImageURL: "https://img/1", Category: enums.ProductCategoryMen, Sizes: []string{"S", "M", "L", "XL"}},
		{Name: "Cotton T-Shirt", Description: "Soft 100% cotton", Price: decimal.RequireFromString("24.99"), ImageURL: "https://img/2", Category: enums.ProductCategoryMen, Sizes: []string{"M", "L"}},
		{Name: "Floral Dress", Description: "Summer outing dress", Price: decimal.RequireFromString("69.99"), ImageURL: "https://img/3", Category: enums.ProductCategoryWomen, Sizes: []string{"S", "M"}},
		{Name: "Kids Hoodie", Description: "Pullover for playtime", Price: decimal.RequireFromString("34.99"), ImageURL: "https://img/4", Category: enums.ProductCategoryKids, Sizes: []string{"S", "M", "L"}},
	}
	for i := range rows {
		rows[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(context.Background(), &rows[i]))
	}
	return rows
}

func names(rows []models.Product) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return out
}

func TestRepositoryListOrdersNewestFirst(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedProducts(t, repo)

	rows, total, err := repo.List(context.Background(), ListFilters{}, pagination.Params{Page: 1, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Equal(t, []string{"Kids Hoodie", "Floral Dress", "Cotton T-Shirt"}, names(rows))

	rows, total, err = repo.List(context.Background(), ListFilters{}, pagination.Params{Page: 2, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Equal(t, []string{"Classic Denim Jeans"}, names(rows))
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedProducts(t, repo)
	ctx := context.Background()
	page := pagination.Params{Page: 1, Limit: 12}

	men := enums.ProductCategoryMen
	sizeXL := enums.ProductSizeXL
	sizeL := enums.ProductSizeL
	minPrice := decimal.RequireFromString("30")
	maxPrice := decimal.RequireFromString("60")

	cases := []struct {
		name    string
		filters ListFilters
		want    []string
	}{
		{name: "search name case-insensitive", filters: ListFilters{Search: "DENIM"}, want: []string{"Classic Denim Jeans"}},
		{name: "search description", filters: ListFilters{Search: "playtime"}, want: []string{"Kids Hoodie"}},
		{name: "search treats percent literally", filters: ListFilters{Search: "100%"}, want: []string{"Cotton T-Shirt"}},
		{name: "category", filters: ListFilters{Category: &men}, want: []string{"Cotton T-Shirt", "Classic Denim Jeans"}},
		{name: "size", filters: ListFilters{Size: &sizeXL}, want: []string{"Classic Denim Jeans"}},
		{name: "size does not match prefix", filters: ListFilters{Size: &sizeL}, want: []string{"Kids Hoodie", "Cotton T-Shirt", "Classic Denim Jeans"}},
		{name: "price range", filters: ListFilters{MinPrice: &minPrice, MaxPrice: &maxPrice}, want: []string{"Kids Hoodie", "Classic Denim Jeans"}},
		{name: "combined", filters: ListFilters{Category: &men, MinPrice: &minPrice}, want: []string{"Classic Denim Jeans"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, total, err := repo.List(ctx, tc.filters, page)
			require.NoError(t, err)
			require.Equal(t, tc.want, names(rows))
			require.Equal(t, int64(len(tc.want)), total)
		})
	}
}

func TestRepositoryFindByIDs(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	rows := seedProducts(t, repo)

	found, err := repo.FindByIDs(context.Background(), []uuid.UUID{rows[0].ID, rows[2].ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "Floral Dress", found[rows[2].ID].Name)
	require.True(t, found[rows[0].ID].Price.Equal(decimal.RequireFromString("59.99")))

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRepositoryCategoriesFollowsEnumOrder(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	require.Empty(t, categories)

	seedProducts(t, repo)
	categories, err = repo.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []enums.ProductCategory{enums.ProductCategoryMen, enums.ProductCategoryWomen, enums.ProductCategoryKids}, categories)
}

func TestSeedReplacesCatalog(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedProducts(t, repo)

	count, err := Seed(context.Background(), repo)
	require.NoError(t, err)
	require.Equal(t, 15, count)

	_, total, err := repo.List(context.Background(), ListFilters{}, pagination.Params{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Equal(t, int64(15), total)

	kids := enums.ProductCategoryKids
	rows, _, err := repo.List(context.Background(), ListFilters{Category: &kids}, pagination.Params{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, rows, 5)
}
