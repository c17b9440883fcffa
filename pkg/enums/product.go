package enums

import (
	"fmt"
	"strings"
)

// ProductCategory represents the storefront departments.
type ProductCategory string

const (
	ProductCategoryMen   ProductCategory = "Men"
	ProductCategoryWomen ProductCategory = "Women"
	ProductCategoryKids  ProductCategory = "Kids"
)

var validProductCategories = []ProductCategory{
	ProductCategoryMen,
	ProductCategoryWomen,
	ProductCategoryKids,
}

// ProductCategories returns the categories in display order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory. Matching is
// case-insensitive so "men" and "Men" resolve to the same department.
func ParseProductCategory(value string) (ProductCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProductCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductSize is a garment size offered by a product.
type ProductSize string

const (
	ProductSizeS  ProductSize = "S"
	ProductSizeM  ProductSize = "M"
	ProductSizeL  ProductSize = "L"
	ProductSizeXL ProductSize = "XL"
)

var validProductSizes = []ProductSize{
	ProductSizeS,
	ProductSizeM,
	ProductSizeL,
	ProductSizeXL,
}

// String implements fmt.Stringer.
func (s ProductSize) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSize.
func (s ProductSize) IsValid() bool {
	for _, candidate := range validProductSizes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSize converts raw input into a ProductSize.
func ParseProductSize(value string) (ProductSize, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validProductSizes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product size %q", value)
}
