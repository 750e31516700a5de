// Package pager splits result lists into fixed-size pages and lays out
// the page buttons shown under a result table.
package pager

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items per page
const DefaultPageSize = 30

// Page is one slice of a longer list
type Page[T any] struct {
	Items       []T
	CurrentPage int // 1-based, 0 when there are no items
	TotalPages  int
	Total       int
}

// Descriptor is the paging summary handed to renderers
type Descriptor struct {
	Total       int
	TotalPages  int
	CurrentPage int
}

// HasPrev reports whether a previous page exists
func (d Descriptor) HasPrev() bool {
	return d.CurrentPage > 1
}

// HasNext reports whether a next page exists
func (d Descriptor) HasNext() bool {
	return d.CurrentPage < d.TotalPages
}

// Descriptor returns the paging summary of p
func (p Page[T]) Descriptor() Descriptor {
	return Descriptor{Total: p.Total, TotalPages: p.TotalPages, CurrentPage: p.CurrentPage}
}

// TotalPages returns ceil(total/pageSize)
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate returns the requested page of items, clamping page into [1, TotalPages].
// A pageSize <= 0 selects DefaultPageSize.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := TotalPages(total, pageSize)
	if totalPages == 0 {
		return Page[T]{Items: []T{}}
	}

	page = min(max(page, 1), totalPages)
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return Page[T]{
		Items:       items[start:end],
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
	}
}

// Button is a single entry of the page button row
type Button struct {
	Page     int // 0 for an ellipsis
	Ellipsis bool
	Active   bool // Page == currentPage
}

// BuildPageButtons returns the first two pages, the last two pages and the
// neighbours of currentPage, in ascending order, with an ellipsis between
// numbers that are not consecutive.
func BuildPageButtons(totalPages, currentPage int) []Button {
	if totalPages <= 0 {
		return nil
	}

	candidates := []int{1, 2, totalPages - 1, totalPages, currentPage - 1, currentPage, currentPage + 1}
	pages := make([]int, 0, len(candidates))
	for _, p := range candidates {
		if p >= 1 && p <= totalPages {
			pages = append(pages, p)
		}
	}
	slices.Sort(pages)
	pages = slices.Compact(pages)

	buttons := make([]Button, 0, len(pages)*2)
	prev := 0
	for _, p := range pages {
		if prev != 0 && p-prev > 1 {
			buttons = append(buttons, Button{Ellipsis: true})
		}
		buttons = append(buttons, Button{Page: p, Active: p == currentPage})
		prev = p
	}
	return buttons
}

// Pages returns just the page numbers of buttons, skipping ellipses
func Pages(buttons []Button) []int {
	pages := make([]int, 0, len(buttons))
	for _, b := range buttons {
		if !b.Ellipsis {
			pages = append(pages, b.Page)
		}
	}
	return pages
}

// RenderButtons renders the row as plain text, e.g. "« 1 2 … 4 [5] 6 … 9 10 »".
// The arrows are dropped on the first and last pages. Nothing is rendered
// for a single page.
func RenderButtons(d Descriptor) string {
	if d.TotalPages <= 1 {
		return ""
	}

	parts := make([]string, 0, d.TotalPages+2)
	if d.HasPrev() {
		parts = append(parts, "«")
	}
	for _, b := range BuildPageButtons(d.TotalPages, d.CurrentPage) {
		switch {
		case b.Ellipsis:
			parts = append(parts, "…")
		case b.Active:
			parts = append(parts, "["+strconv.Itoa(b.Page)+"]")
		default:
			parts = append(parts, strconv.Itoa(b.Page))
		}
	}
	if d.HasNext() {
		parts = append(parts, "»")
	}
	return strings.Join(parts, " ")
}
