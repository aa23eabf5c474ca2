// Package pagination implements page/size list windowing for the REST API.
// Clients ask for a page with ?page=N&size=M; out-of-range or malformed
// values fall back to the defaults rather than erroring.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultSize = 20
	maxSize     = 100
)

// Params is a validated page request.
type Params struct {
	Page   int `json:"page"`
	Size   int `json:"size"`
	Offset int `json:"-"`
}

// DefaultParams returns the first page at the default size.
func DefaultParams() Params {
	return Params{Page: 1, Size: defaultSize}
}

// FromRequest reads page and size from the query string. Pages are 1-based;
// size is capped at 100.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil && v > 0 && v <= maxSize {
		p.Size = v
	}

	p.Offset = (p.Page - 1) * p.Size
	return p
}

// Result is one page of a listing plus the counters clients need to render
// pagination controls.
type Result[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewResult assembles a page from the fetched window and the total row count.
func NewResult[T any](items []T, total int, params Params) Result[T] {
	pages := total / params.Size
	if total%params.Size > 0 {
		pages++
	}

	return Result[T]{
		Items:   items,
		Total:   total,
		Page:    params.Page,
		Size:    params.Size,
		Pages:   pages,
		HasNext: params.Page < pages,
		HasPrev: params.Page > 1,
	}
}
