// Package columns maps logical field names onto the physical columns of a
// case export.
package columns

import (
	"sort"
	"strings"

	"case-insights-go/internal/config"
)

const (
	Queue                 = "queue"
	Date                  = "date"
	Description           = "description"
	Partner               = "partner"
	Country               = "country"
	DescriptionTranslated = "description_translated"
	Category              = "category"
	Subcategory           = "subcategory"
)

// Map is the resolved logical -> physical column binding for one dataset.
// It is never modified after Resolve returns; a new dataset needs a new Map.
type Map struct {
	bindings map[string]string
}

// Resolve binds positional names first, then pattern names. A logical name
// that cannot be bound is simply absent.
func Resolve(columnNames []string, layout config.ColumnLayout) Map {
	m := Map{bindings: make(map[string]string)}

	for _, p := range layout.Positional {
		if p.Index >= 0 && p.Index < len(columnNames) {
			m.bindings[p.Name] = columnNames[p.Index]
		}
	}

	for _, p := range layout.Patterns {
		if col, ok := firstMatch(columnNames, p.Patterns); ok {
			m.bindings[p.Name] = col
		}
	}
	return m
}

// firstMatch walks columns in declared order and returns the first one whose
// lowercased name contains any of the patterns.
func firstMatch(columnNames, patterns []string) (string, bool) {
	for _, col := range columnNames {
		lower := strings.ToLower(col)
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				return col, true
			}
		}
	}
	return "", false
}

// Get returns the physical column bound to name.
func (m Map) Get(name string) (string, bool) {
	col, ok := m.bindings[name]
	return col, ok
}

// Has reports whether the capability backed by name is available.
func (m Map) Has(name string) bool {
	_, ok := m.bindings[name]
	return ok
}

// Issue is the column used for issue level analysis: subcategory when it
// resolves, category otherwise.
func (m Map) Issue() (string, bool) {
	if col, ok := m.Get(Subcategory); ok {
		return col, true
	}
	return m.Get(Category)
}

// Text is the free text column used for theme analysis, with the translated
// description as its fallback.
func (m Map) Text() (primary, fallback string, ok bool) {
	primary, ok = m.Get(Description)
	fallback, _ = m.Get(DescriptionTranslated)
	if !ok && fallback != "" {
		return fallback, "", true
	}
	return primary, fallback, ok
}

// Bindings returns a copy of the map sorted by logical name.
func (m Map) Bindings() []Binding {
	out := make([]Binding, 0, len(m.bindings))
	for k, v := range m.bindings {
		out = append(out, Binding{Logical: k, Column: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Logical < out[j].Logical })
	return out
}

type Binding struct {
	Logical string `json:"logical"`
	Column  string `json:"column"`
}
