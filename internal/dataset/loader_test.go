package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSVInfersTypes(t *testing.T) {
	in := "Queue,Count,Score,Created,Note\n" +
		"billing,3,1.5,2024-01-15,\"hello, world\"\n" +
		"login,,2,2024-01-22,\n" +
		"login,7,x,,short\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())

	kinds := map[string]Kind{}
	for _, name := range tbl.ColumnNames() {
		c, _ := tbl.Column(name)
		kinds[name] = c.Kind
	}
	assert.Equal(t, map[string]Kind{
		"Queue":   KindText,
		"Count":   KindInt,
		"Score":   KindText,
		"Created": KindText,
		"Note":    KindText,
	}, kinds)

	count, _ := tbl.Column("Count")
	assert.True(t, count.IsNull(1))
	note, _ := tbl.Column("Note")
	assert.Equal(t, "hello, world", note.String(0))
}

func TestReadCSVPadsRaggedRows(t *testing.T) {
	in := "a,b,c\n1,2\n3,4,5,6\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "column_4"}, tbl.ColumnNames())
	c, _ := tbl.Column("c")
	assert.True(t, c.IsNull(0))
}

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		width  int
		want   []string
	}{
		{"unique", []string{"a", "b"}, 2, []string{"a", "b"}},
		{"duplicates", []string{"a", "a", "a"}, 3, []string{"a", "a_1", "a_2"}},
		{"blank", []string{"", " x "}, 3, []string{"column_1", "x", "column_3"}},
		{"suffix clash", []string{"a_1", "a", "a"}, 3, []string{"a_1", "a", "a_2"}},
		{"bom", []string{"\ufeffid"}, 1, []string{"id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeaders(tt.header, tt.width))
		})
	}
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load("cases.json")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.CSV")
	require.NoError(t, os.WriteFile(path, []byte("country\nUS\nUK\n"), 0o644))
	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
}

func TestLoadXLSXDetectsDates(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "Created"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Country"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "Volume"))
	require.NoError(t, f.SetCellValue(sheet, "A2", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B2", "US"))
	require.NoError(t, f.SetCellValue(sheet, "C2", 12))
	require.NoError(t, f.SetCellValue(sheet, "A3", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B3", "UK"))
	require.NoError(t, f.SetCellValue(sheet, "C3", 3))

	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.NumRows())

	created, ok := tbl.Column("Created")
	require.True(t, ok)
	require.Equal(t, KindTime, created.Kind)
	d, ok := created.Time(1)
	require.True(t, ok)
	assert.Equal(t, "2024-03-12", d.Format("2006-01-02"))

	vol, _ := tbl.Column("Volume")
	assert.Equal(t, KindInt, vol.Kind)
	country, _ := tbl.Column("Country")
	assert.Equal(t, "UK", country.String(1))
}

func TestLoadParquet(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "country", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "volume", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "opened", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"US", "", "UK"}, []bool{true, false, true})
	b.Field(1).(*array.Int64Builder).AppendValues([]int64{4, 5, 6}, nil)
	b.Field(2).(*array.Date32Builder).AppendValues([]arrow.Date32{
		arrow.Date32FromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		arrow.Date32FromTime(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)),
		0,
	}, []bool{true, true, false})
	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	path := filepath.Join(t.TempDir(), "cases.parquet")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, got.NumRows())
	assert.Equal(t, []string{"country", "volume", "opened"}, got.ColumnNames())

	country, _ := got.Column("country")
	assert.True(t, country.IsNull(1))
	assert.Equal(t, "UK", country.String(2))

	volume, _ := got.Column("volume")
	assert.Equal(t, KindInt, volume.Kind)

	opened, _ := got.Column("opened")
	require.Equal(t, KindTime, opened.Kind)
	assert.Equal(t, "2024-01-08", opened.String(1))
	assert.True(t, opened.IsNull(2))
}
