package product

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	"github.com/angelmondragon/clothing-store-backend/pkg/pagination"
)

// DefaultListLimit is the catalog page size when none is requested.
const DefaultListLimit = 12

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	Search   string
	Category *enums.ProductCategory
	Size     *enums.ProductSize
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// ListProductsInput captures filters plus page pagination.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}
