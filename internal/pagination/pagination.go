// Package pagination splits ordered sequences into numbered pages.
package pagination

import (
	"context"
	"strconv"
	"strings"
)

// Page is one slice of a sequence plus the metadata needed to link to its
// neighbours.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Number     int   `json:"number"`
	NumPages   int   `json:"num_pages"`
	Count      int64 `json:"count"`
	PerPage    int   `json:"per_page"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_previous"`
	NextNumber *int  `json:"next_page_number,omitempty"`
	PrevNumber *int  `json:"previous_page_number,omitempty"`
}

// Source is a counted, sliceable sequence whose order is fixed by the
// implementation.
type Source[T any] interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, limit, offset int) ([]T, error)
}

// ParseNumber turns a raw ?page= value into a page number. Anything absent,
// non-numeric or below one becomes page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// numPages is never below one so an empty sequence still has page 1.
func numPages(count int64, perPage int) int {
	if count == 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

func clamp(requested, pages int) int {
	if requested < 1 {
		return 1
	}
	if requested > pages {
		return pages
	}
	return requested
}

func newPage[T any](items []T, number, pages, perPage int, count int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{
		Items:    items,
		Number:   number,
		NumPages: pages,
		Count:    count,
		PerPage:  perPage,
		HasNext:  number < pages,
		HasPrev:  number > 1,
	}
	if p.HasNext {
		next := number + 1
		p.NextNumber = &next
	}
	if p.HasPrev {
		prev := number - 1
		p.PrevNumber = &prev
	}
	return p
}

// Slice pages an in-memory slice. perPage must be positive.
func Slice[T any](items []T, perPage int, raw string) Page[T] {
	count := int64(len(items))
	pages := numPages(count, perPage)
	number := clamp(ParseNumber(raw), pages)

	start := (number - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return newPage(items[start:end], number, pages, perPage, count)
}

// Paginate counts src, clamps the requested page and fetches only that page.
func Paginate[T any](ctx context.Context, src Source[T], perPage int, raw string) (Page[T], error) {
	count, err := src.Count(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	pages := numPages(count, perPage)
	number := clamp(ParseNumber(raw), pages)

	if count == 0 {
		return newPage[T](nil, number, pages, perPage, count), nil
	}

	items, err := src.Fetch(ctx, perPage, (number-1)*perPage)
	if err != nil {
		return Page[T]{}, err
	}
	return newPage(items, number, pages, perPage, count), nil
}
