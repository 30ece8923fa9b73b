package types

import "strings"

// Group is one row of an aggregated table: the group key (one value per
// grouping column), its row count and its share of the denominator.
type Group struct {
	Keys       []string `json:"keys"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// Key joins multi column keys for display.
func (g Group) Key() string {
	return strings.Join(g.Keys, " / ")
}

// ThemeAssignment is the classifier output for one row of text.
type ThemeAssignment struct {
	Theme string `json:"theme"`
	Score int    `json:"score"`
}

// ThemeShare is a theme's share of a set of rows, with a strength label when
// computed per region.
type ThemeShare struct {
	Theme      string  `json:"theme"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Strength   string  `json:"strength,omitempty"`
}

// RegionThemes is the theme mix of one region.
type RegionThemes struct {
	Region string       `json:"region"`
	Total  int          `json:"total"`
	Themes []ThemeShare `json:"themes"`
}

// Page is a window over a result list.
type Page[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

// Paginate slices items; limit <= 0 returns everything after offset.
func Paginate[T any](items []T, limit, offset int) Page[T] {
	p := Page[T]{Total: len(items), Limit: limit, Offset: offset}
	if offset < 0 {
		offset = 0
		p.Offset = 0
	}
	if offset >= len(items) {
		p.Items = []T{}
		return p
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	p.Items = items[offset:end]
	return p
}
