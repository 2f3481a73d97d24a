// Package catalog holds the read side of the storefront: in-memory search,
// pagination and the page loader that joins collection names and display
// prices onto products.
package catalog

import (
	"strings"

	"boutique-catalog/internal/domain"
)

// AdminPageSize is the number of rows on one page of an admin list.
const AdminPageSize = 11

// SearchProducts returns the products whose name, description, price or
// id contains query, ignoring case. A blank query returns products as is.
func SearchProducts(products []*domain.Product, query string) []*domain.Product {
	q := normalizeQuery(query)
	if q == "" {
		return products
	}

	matched := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if containsAny(q, p.Name, p.Description, p.Price.String(), p.ID) {
			matched = append(matched, p)
		}
	}
	return matched
}

// SearchCollections is SearchProducts for categories and lookbooks,
// matching name, description, image and id.
func SearchCollections(collections []*domain.Collection, query string) []*domain.Collection {
	q := normalizeQuery(query)
	if q == "" {
		return collections
	}

	matched := make([]*domain.Collection, 0, len(collections))
	for _, c := range collections {
		if containsAny(q, c.Name, c.Description, c.Image, c.ID) {
			matched = append(matched, c)
		}
	}
	return matched
}

func normalizeQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	return strings.ToLower(query)
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// TotalPages returns the number of pages n items fill.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage moves page into the range of pages n items fill, or to 1 when
// there are none.
func ClampPage(page, n, size int) int {
	total := TotalPages(n, size)
	switch {
	case total == 0, page < 1:
		return 1
	case page > total:
		return total
	default:
		return page
	}
}

// Paginate returns the items on the 1-based page. Out of range pages are
// empty.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return items[:0]
	}
	start := (page - 1) * size
	if start >= len(items) {
		return items[:0]
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// MarkerKind tells a page link from an ellipsis.
type MarkerKind int

const (
	PageMarker MarkerKind = iota
	EllipsisMarker
)

// Marker is one entry of a pagination control.
type Marker struct {
	Kind MarkerKind
	Page int
}

// PageWindow lists the markers of a pagination control: the first, last
// and current page and the pages next to the current one are links; the
// pages two away from the current one collapse into an ellipsis each.
// Every other page is hidden.
func PageWindow(current, total int) []Marker {
	var markers []Marker
	for page := 1; page <= total; page++ {
		switch {
		case page == 1 || page == total || (page >= current-1 && page <= current+1):
			markers = append(markers, Marker{Kind: PageMarker, Page: page})
		case page == current-2 || page == current+2:
			markers = append(markers, Marker{Kind: EllipsisMarker, Page: page})
		}
	}
	return markers
}
