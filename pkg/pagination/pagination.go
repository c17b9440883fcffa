package pagination

import "math"

const (
	// DefaultPage is used when a page is not provided or not positive.
	DefaultPage = 1
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
	// MaxPage keeps (Page-1)*Limit inside an int32 offset.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies the default page, the supplied default limit and MaxLimit.
// Non-positive values fall back to defaults instead of failing, and pages
// past MaxPage are clamped.
func Normalize(params Params, defaultLimit int) Params {
	if params.Page <= 0 {
		params.Page = DefaultPage
	}
	if params.Page > MaxPage {
		params.Page = MaxPage
	}
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}
	return params
}

// Offset returns the row offset of the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pages returns the number of pages needed to show total rows.
func Pages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
