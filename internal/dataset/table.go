package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "text"
	}
}

// Column is a named, typed, nullable vector. Only the slice matching Kind is
// populated.
type Column struct {
	Name string
	Kind Kind

	text   []string
	ints   []int64
	floats []float64
	times  []time.Time
	valid  []bool
}

// Text builds a text column; empty strings are null.
func Text(name string, values []string) *Column {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = v != ""
	}
	return &Column{Name: name, Kind: KindText, text: values, valid: valid}
}

// Ints builds an integer column. A nil valid slice marks every row present.
func Ints(name string, values []int64, valid []bool) *Column {
	return &Column{Name: name, Kind: KindInt, ints: values, valid: fillValid(valid, len(values))}
}

func Floats(name string, values []float64, valid []bool) *Column {
	return &Column{Name: name, Kind: KindFloat, floats: values, valid: fillValid(valid, len(values))}
}

// Times builds a time column; zero times are null.
func Times(name string, values []time.Time) *Column {
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !v.IsZero()
	}
	return &Column{Name: name, Kind: KindTime, times: values, valid: valid}
}

func fillValid(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func (c *Column) Len() int { return len(c.valid) }

func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// String renders row i as text. Null rows render as "".
func (c *Column) String(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.ints[i], 10)
	case KindFloat:
		return strconv.FormatFloat(c.floats[i], 'f', -1, 64)
	case KindTime:
		t := c.times[i]
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return c.text[i]
	}
}

// Key is the grouping key of row i. ok is false for nulls and blank text,
// which never form a group of their own.
func (c *Column) Key(i int) (key string, ok bool) {
	if !c.valid[i] {
		return "", false
	}
	s := c.String(i)
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func (c *Column) Int(i int) (int64, bool) {
	if c.Kind != KindInt || !c.valid[i] {
		return 0, false
	}
	return c.ints[i], true
}

func (c *Column) Float(i int) (float64, bool) {
	if !c.valid[i] {
		return 0, false
	}
	switch c.Kind {
	case KindFloat:
		return c.floats[i], true
	case KindInt:
		return float64(c.ints[i]), true
	}
	return 0, false
}

func (c *Column) Time(i int) (time.Time, bool) {
	if c.Kind != KindTime || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// MapText returns a copy of a text column with fn applied to every non-null
// value. Non-text columns are returned unchanged.
func (c *Column) MapText(fn func(string) string) *Column {
	if c.Kind != KindText {
		return c
	}
	out := make([]string, len(c.text))
	for i, v := range c.text {
		if c.valid[i] {
			out[i] = fn(v)
		}
	}
	col := Text(c.Name, out)
	return col
}

func (c *Column) take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, valid: make([]bool, len(rows))}
	switch c.Kind {
	case KindInt:
		out.ints = make([]int64, len(rows))
	case KindFloat:
		out.floats = make([]float64, len(rows))
	case KindTime:
		out.times = make([]time.Time, len(rows))
	default:
		out.text = make([]string, len(rows))
	}
	for j, i := range rows {
		out.valid[j] = c.valid[i]
		switch c.Kind {
		case KindInt:
			out.ints[j] = c.ints[i]
		case KindFloat:
			out.floats[j] = c.floats[i]
		case KindTime:
			out.times[j] = c.times[i]
		default:
			out.text[j] = c.text[i]
		}
	}
	return out
}

func (c *Column) sizeBytes() int64 {
	n := int64(len(c.valid))
	switch c.Kind {
	case KindText:
		for _, s := range c.text {
			n += int64(len(s)) + 8
		}
	case KindTime:
		n += int64(len(c.times)) * 8
	default:
		n += int64(len(c.valid)) * 8
	}
	return n
}

// Table is an immutable, rectangular set of named columns. Operations that
// change rows or columns return a new Table.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

var ErrRaggedColumns = errors.New("columns have different lengths")

func NewTable(cols ...*Column) (*Table, error) {
	t := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		t.index[c.Name] = i
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w", c.Name, c.Len(), t.rows, ErrRaggedColumns)
		}
	}
	return t, nil
}

// MustTable is NewTable for fixtures.
func MustTable(cols ...*Column) *Table {
	t, err := NewTable(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) NumRows() int    { return t.rows }
func (t *Table) NumColumns() int { return len(t.cols) }
func (t *Table) Empty() bool     { return t == nil || t.rows == 0 }

// ColumnNames returns the column identifiers in declared order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

func (t *Table) ColumnAt(i int) *Column { return t.cols[i] }

// Filter returns the rows for which keep is true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	var rows []int
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// Take returns the given rows, in the given order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(rows)
	}
	return &Table{cols: cols, index: t.index, rows: len(rows)}
}

// WithColumn returns a table where c replaces the column of the same name,
// or is appended when no such column exists.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	cols := make([]*Column, len(t.cols))
	copy(cols, t.cols)
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// EstimatedSize approximates the in-memory footprint in bytes.
func (t *Table) EstimatedSize() int64 {
	var n int64
	for _, c := range t.cols {
		n += c.sizeBytes()
	}
	return n
}
