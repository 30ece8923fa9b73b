package dataset

import (
	"case-insights-go/internal/logger"
	"case-insights-go/internal/numeric"
)

type ColumnProfile struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	NonNull int    `json:"non_null"`
	Unique  int    `json:"unique"`
}

type Summary struct {
	TotalRows    int             `json:"total_rows"`
	TotalColumns int             `json:"total_columns"`
	MemoryMB     float64         `json:"memory_usage_mb"`
	Columns      []ColumnProfile `json:"columns"`
}

// Summarize reports table shape, approximate memory and a per-column profile.
func Summarize(t *Table) Summary {
	s := Summary{
		TotalRows:    t.NumRows(),
		TotalColumns: t.NumColumns(),
		MemoryMB:     numeric.Round(float64(t.EstimatedSize())/(1024*1024), 2),
	}
	for _, c := range t.cols {
		nonNull := 0
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				nonNull++
			}
		}
		s.Columns = append(s.Columns, ColumnProfile{
			Name:    c.Name,
			Kind:    c.Kind.String(),
			NonNull: nonNull,
			Unique:  UniqueCount(t, c.Name),
		})
	}
	return s
}

// UniqueCount is the number of distinct non-null values in a column, or 0
// when the column does not exist.
func UniqueCount(t *Table, column string) int {
	c, ok := t.Column(column)
	if !ok {
		return 0
	}
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		seen[c.String(i)] = struct{}{}
	}
	return len(seen)
}

// LoadAndSummarize reads the dataset and logs its shape.
func LoadAndSummarize(path string, log *logger.Logger) (*Table, Summary, error) {
	l := log.WithField("component", "dataset.summary").WithField("path", path)
	l.Info("opening dataset")
	t, err := Load(path)
	if err != nil {
		l.WithField("error", err.Error()).Error("load failed")
		return nil, Summary{}, err
	}
	s := Summarize(t)
	l.WithFields(map[string]interface{}{
		"total_rows":    s.TotalRows,
		"total_columns": s.TotalColumns,
		"memory_mb":     s.MemoryMB,
	}).Info("dataset loaded")
	for _, c := range s.Columns {
		l.WithField("column", c.Name).WithField("kind", c.Kind).Debug("column profile")
	}
	return t, s, nil
}
