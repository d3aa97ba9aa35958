package pagination

import "math"

const (
	// StorefrontPerPage is the storefront product grid page size.
	StorefrontPerPage = 12
	// AdminPerPage is the admin listing page size.
	AdminPerPage = 20
	// MaxPerPage caps how many rows any page query can request.
	MaxPerPage = 100
)

// Params holds page-number pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Page describes the resolved window plus row totals for a listing response.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps the page to >= 1 and the page size to (0, MaxPerPage],
// substituting fallbackPerPage when no size was provided.
func (p Params) Normalize(fallbackPerPage int) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = fallbackPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Resolve builds the response page descriptor for a total row count.
func (p Params) Resolve(totalItems int64) Page {
	totalPages := 0
	if p.PerPage > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(p.PerPage)))
	}
	return Page{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
