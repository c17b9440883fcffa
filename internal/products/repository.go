package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
)

const dialectSQLite = "sqlite"

// Repository reads and seeds catalog rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products that still exist for the given ids, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// List returns one page of products matching the filters plus the total match count.
func (r *Repository) List(ctx context.Context, filters ListFilters, page pagination.Params) ([]models.Product, int64, error) {
	filtered := func() *gorm.DB {
		return r.applyFilters(r.db.WithContext(ctx).Model(&models.Product{}), filters)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := filtered().
		Order("created_at DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if search := strings.ToLower(strings.TrimSpace(filters.Search)); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", filters.Category.String())
	}
	if filters.Size != nil {
		if r.db.Dialector.Name() == dialectSQLite {
			// pq.StringArray stores sizes as a quoted array literal: {"S","M"}.
			query = query.Where("sizes LIKE ?", `%"`+filters.Size.String()+`"%`)
		} else {
			query = query.Where("? = ANY(sizes)", filters.Size.String())
		}
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	return query
}

// Categories lists the distinct categories present in the catalog in enum order.
func (r *Repository) Categories(ctx context.Context) ([]enums.ProductCategory, error) {
	var raw []string
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Distinct().Pluck("category", &raw).Error; err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		present[value] = struct{}{}
	}
	out := []enums.ProductCategory{}
	for _, category := range enums.ProductCategories() {
		if _, ok := present[category.String()]; ok {
			out = append(out, category)
		}
	}
	return out, nil
}

// ReplaceAll deletes every product and inserts the provided rows.
func (r *Repository) ReplaceAll(ctx context.Context, products []models.Product) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	return tx.Create(&products).Error
}

// Create inserts a single product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
