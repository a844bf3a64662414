package product

import "math"

// ListQuery carries normalized list parameters. Search is nil when no
// search term was supplied, which is distinct from any real term.
type ListQuery struct {
	Page    int
	PerPage int
	Search  *string
}

// Filter is what the persistence gateway needs to select products.
type Filter struct {
	NameContains *string
}

// Page is one page of products plus the numbers needed for pagination metadata.
type Page struct {
	Items   []*Product `json:"items"`
	Total   int        `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

// NewListQuery normalizes raw inputs. Non-positive page or perPage fall back
// to 1 and defaultPerPage; perPage is capped at maxPerPage when maxPerPage > 0.
// page is capped at MaxPage(perPage). An empty search term is treated as absent.
func NewListQuery(page, perPage int, search string, defaultPerPage, maxPerPage int) ListQuery {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if maxPage := MaxPage(perPage); page > maxPage {
		page = maxPage
	}
	q := ListQuery{Page: page, PerPage: perPage}
	if search != "" {
		s := search
		q.Search = &s
	}
	return q
}

func (q ListQuery) Filter() Filter {
	return Filter{NameContains: q.Search}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// MaxPage is the largest page whose last row offset still fits in an int.
func MaxPage(perPage int) int {
	if perPage < 1 {
		return math.MaxInt
	}
	return math.MaxInt / perPage
}
