package aggregator

import (
	"sort"
	"strings"

	"case-insights-go/internal/columns"
	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/numeric"
	"case-insights-go/internal/types"
)

const NotAvailable = "N/A"

// Engine computes grouped counts over one dataset. It never modifies the
// table; every method returns a fresh result.
type Engine struct {
	table   *dataset.Table
	cols    columns.Map
	limits  config.Limits
	partner string
}

func New(t *dataset.Table, m columns.Map, cfg config.Analytics) *Engine {
	partner := cfg.PartnerKeyword
	if partner == "" {
		partner = "sky"
	}
	return &Engine{table: t, cols: m, limits: cfg.Limits, partner: partner}
}

// With returns an engine over another view of the same dataset, for example
// a filtered subset. The column map is shared since the schema is the same.
func (e *Engine) With(t *dataset.Table) *Engine {
	cp := *e
	cp.table = t
	return &cp
}

func (e *Engine) Table() *dataset.Table { return e.table }
func (e *Engine) Columns() columns.Map  { return e.cols }
func (e *Engine) Total() int            { return e.table.NumRows() }

// Column looks up a physical column first and falls back to a logical name.
func (e *Engine) Column(name string) (*dataset.Column, bool) {
	if name == "" || e.table == nil {
		return nil, false
	}
	if c, ok := e.table.Column(name); ok {
		return c, true
	}
	if phys, ok := e.cols.Get(name); ok {
		return e.table.Column(phys)
	}
	return nil, false
}

// TopN returns the n most frequent non-null values of column.
func (e *Engine) TopN(column string, n int) []types.Group {
	dist := e.Distribution(column)
	if n >= 0 && len(dist) > n {
		dist = dist[:n]
	}
	return dist
}

// Distribution returns every non-null value of column with its count and
// share of the non-null rows.
func (e *Engine) Distribution(column string) []types.Group {
	c, ok := e.Column(column)
	if !ok {
		return []types.Group{}
	}
	groups, counted := groupBy(e.table.NumRows(), []*dataset.Column{c})
	return withPercent(groups, counted)
}

// CrossTabulate counts (row, col) value pairs. limit <= 0 applies the
// configured cap.
func (e *Engine) CrossTabulate(rowColumn, colColumn string, limit int) []types.Group {
	rc, ok := e.Column(rowColumn)
	if !ok {
		return []types.Group{}
	}
	cc, ok := e.Column(colColumn)
	if !ok {
		return []types.Group{}
	}
	if limit <= 0 {
		limit = e.limits.CrossTab
	}
	groups, counted := groupBy(e.table.NumRows(), []*dataset.Column{rc, cc})
	out := withPercent(groups, counted)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilteredGroup optionally keeps only rows whose filterColumn contains
// filterPattern (case-insensitive), then groups by groupColumns. Unknown
// group columns are skipped; percentages are relative to the filtered row
// count. If a filter is requested and filterColumn does not resolve, the
// result is empty: the filter is never silently dropped to group all rows.
func (e *Engine) FilteredGroup(groupColumns []string, filterColumn, filterPattern string) []types.Group {
	view := e.table
	if filterColumn != "" && filterPattern != "" {
		fc, ok := e.Column(filterColumn)
		if !ok {
			return []types.Group{}
		}
		view = e.table.Filter(containsFold(fc, filterPattern))
	}

	sub := e.With(view)
	var cols []*dataset.Column
	for _, name := range groupColumns {
		if c, ok := sub.Column(name); ok {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 || view.NumRows() == 0 {
		return []types.Group{}
	}
	groups, _ := groupBy(view.NumRows(), cols)
	return withPercent(groups, view.NumRows())
}

// FilterByPartnerContains keeps rows whose resolved partner column contains
// keyword, case-insensitively. The result is empty when no partner column
// resolved.
func (e *Engine) FilterByPartnerContains(keyword string) *dataset.Table {
	if keyword == "" {
		keyword = e.partner
	}
	phys, ok := e.cols.Get(columns.Partner)
	if !ok {
		return e.table.Take(nil)
	}
	pc, ok := e.table.Column(phys)
	if !ok {
		return e.table.Take(nil)
	}
	return e.table.Filter(containsFold(pc, keyword))
}

// PartnerKeyword is the configured partner slice keyword.
func (e *Engine) PartnerKeyword() string { return e.partner }

// PartnerCount is the number of rows in the configured partner slice.
func (e *Engine) PartnerCount() int {
	return e.FilterByPartnerContains("").NumRows()
}

// PartnerShare is the partner slice as a percentage of all rows.
func (e *Engine) PartnerShare() float64 {
	return numeric.Percent(e.PartnerCount(), e.Total(), 2)
}

// TopValue is the most frequent value and its count, or ("N/A", 0).
func (e *Engine) TopValue(column string) (string, int) {
	top := e.TopN(column, 1)
	if len(top) == 0 {
		return NotAvailable, 0
	}
	return top[0].Key(), top[0].Count
}

// Unique counts distinct non-null values of column.
func (e *Engine) Unique(column string) int {
	c, ok := e.Column(column)
	if !ok {
		return 0
	}
	return dataset.UniqueCount(e.table, c.Name)
}

func containsFold(c *dataset.Column, pattern string) func(int) bool {
	p := strings.ToLower(pattern)
	return func(row int) bool {
		if c.IsNull(row) {
			return false
		}
		return strings.Contains(strings.ToLower(c.String(row)), p)
	}
}

type bucket struct {
	keys  []string
	count int
}

// groupBy counts rows per key tuple in first-occurrence order, skipping rows
// where any key is null or blank. It returns the groups sorted by count
// (stable, so ties keep first-occurrence order) and the number of rows that
// were counted.
func groupBy(rows int, cols []*dataset.Column) ([]bucket, int) {
	index := make(map[string]int)
	var out []bucket
	counted := 0
	keys := make([]string, len(cols))
	for i := 0; i < rows; i++ {
		complete := true
		for j, c := range cols {
			k, ok := c.Key(i)
			if !ok {
				complete = false
				break
			}
			keys[j] = k
		}
		if !complete {
			continue
		}
		counted++
		id := strings.Join(keys, "\x1f")
		if pos, ok := index[id]; ok {
			out[pos].count++
			continue
		}
		index[id] = len(out)
		out = append(out, bucket{keys: append([]string(nil), keys...), count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out, counted
}

func withPercent(groups []bucket, denom int) []types.Group {
	out := make([]types.Group, len(groups))
	for i, g := range groups {
		out[i] = types.Group{
			Keys:       g.keys,
			Count:      g.count,
			Percentage: numeric.Percent(g.count, denom, 2),
		}
	}
	return out
}
