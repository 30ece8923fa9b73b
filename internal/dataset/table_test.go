package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableValidates(t *testing.T) {
	_, err := NewTable(Text("a", []string{"x", "y"}), Text("b", []string{"x"}))
	require.ErrorIs(t, err, ErrRaggedColumns)

	_, err = NewTable(Text("a", []string{"x"}), Text("a", []string{"y"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column")
}

func TestColumnKeysSkipNullAndBlank(t *testing.T) {
	c := Text("country", []string{"US", "", "  ", "UK"})
	var keys []string
	for i := 0; i < c.Len(); i++ {
		if k, ok := c.Key(i); ok {
			keys = append(keys, k)
		}
	}
	assert.Equal(t, []string{"US", "UK"}, keys)

	ints := Ints("n", []int64{7, 0}, []bool{true, false})
	k, ok := ints.Key(0)
	assert.True(t, ok)
	assert.Equal(t, "7", k)
	_, ok = ints.Key(1)
	assert.False(t, ok)
}

func TestTimeColumnRendering(t *testing.T) {
	c := Times("d", []time.Time{
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		{},
	})
	assert.Equal(t, "2024-01-15", c.String(0))
	assert.Equal(t, "2024-01-15 09:30:00", c.String(1))
	assert.True(t, c.IsNull(2))
}

func TestFilterDoesNotMutate(t *testing.T) {
	tbl := MustTable(
		Text("country", []string{"US", "UK", "US", "DE"}),
		Ints("n", []int64{1, 2, 3, 4}, nil),
	)
	us := tbl.Filter(func(row int) bool {
		c, _ := tbl.Column("country")
		return c.String(row) == "US"
	})
	require.Equal(t, 2, us.NumRows())
	n, _ := us.Column("n")
	v, _ := n.Int(1)
	assert.Equal(t, int64(3), v)

	assert.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, []string{"country", "n"}, us.ColumnNames())
}

func TestWithColumnReplacesInPlaceOrder(t *testing.T) {
	tbl := MustTable(Text("a", []string{"x"}), Text("b", []string{"y"}))
	out, err := tbl.WithColumn(Text("a", []string{"z"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.ColumnNames())
	a, _ := out.Column("a")
	assert.Equal(t, "z", a.String(0))

	orig, _ := tbl.Column("a")
	assert.Equal(t, "x", orig.String(0))
}

func TestSummarize(t *testing.T) {
	tbl := MustTable(
		Text("country", []string{"US", "UK", "US", ""}),
		Floats("score", []float64{1.5, 2, 0, 3}, []bool{true, true, false, true}),
	)
	s := Summarize(tbl)
	assert.Equal(t, 4, s.TotalRows)
	assert.Equal(t, 2, s.TotalColumns)
	require.Len(t, s.Columns, 2)
	assert.Equal(t, ColumnProfile{Name: "country", Kind: "text", NonNull: 3, Unique: 2}, s.Columns[0])
	assert.Equal(t, ColumnProfile{Name: "score", Kind: "float", NonNull: 3, Unique: 3}, s.Columns[1])
	assert.Equal(t, 0, UniqueCount(tbl, "missing"))
}
