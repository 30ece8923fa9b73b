package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

// readParquet loads every column of a parquet file. Arrow types map onto
// column kinds; types without a mapping are rendered as text.
func readParquet(path string) (*Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("parquet reader: %w", err)
	}
	tbl, err := fr.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	names := make([]string, tbl.NumCols())
	for i := range names {
		names[i] = tbl.Column(i).Name()
	}
	names = NormalizeHeaders(names, len(names))

	cols := make([]*Column, 0, tbl.NumCols())
	for i := 0; i < int(tbl.NumCols()); i++ {
		col, err := fromArrow(names[i], tbl.Column(i))
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	t, err := NewTable(cols...)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return t, nil
}

func fromArrow(name string, col *arrow.Column) (*Column, error) {
	n := col.Len()
	switch col.DataType().ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		vals := make([]int64, 0, n)
		valid := make([]bool, 0, n)
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				valid = append(valid, chunk.IsValid(i))
				vals = append(vals, arrowInt(chunk, i))
			}
		}
		return Ints(name, vals, valid), nil
	case arrow.FLOAT32, arrow.FLOAT64, arrow.UINT64:
		vals := make([]float64, 0, n)
		valid := make([]bool, 0, n)
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				valid = append(valid, chunk.IsValid(i))
				vals = append(vals, arrowFloat(chunk, i))
			}
		}
		return Floats(name, vals, valid), nil
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		vals := make([]time.Time, 0, n)
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				if !chunk.IsValid(i) {
					vals = append(vals, time.Time{})
					continue
				}
				vals = append(vals, arrowTime(chunk, i))
			}
		}
		return Times(name, vals), nil
	default:
		vals := make([]string, 0, n)
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				if !chunk.IsValid(i) {
					vals = append(vals, "")
					continue
				}
				vals = append(vals, chunk.ValueStr(i))
			}
		}
		return Text(name, vals), nil
	}
}

func arrowInt(a arrow.Array, i int) int64 {
	switch arr := a.(type) {
	case *array.Int8:
		return int64(arr.Value(i))
	case *array.Int16:
		return int64(arr.Value(i))
	case *array.Int32:
		return int64(arr.Value(i))
	case *array.Int64:
		return arr.Value(i)
	case *array.Uint8:
		return int64(arr.Value(i))
	case *array.Uint16:
		return int64(arr.Value(i))
	case *array.Uint32:
		return int64(arr.Value(i))
	}
	return 0
}

func arrowFloat(a arrow.Array, i int) float64 {
	switch arr := a.(type) {
	case *array.Float32:
		return float64(arr.Value(i))
	case *array.Float64:
		return arr.Value(i)
	case *array.Uint64:
		return float64(arr.Value(i))
	}
	return 0
}

func arrowTime(a arrow.Array, i int) time.Time {
	switch arr := a.(type) {
	case *array.Date32:
		return arr.Value(i).ToTime().UTC()
	case *array.Date64:
		return arr.Value(i).ToTime().UTC()
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return arr.Value(i).ToTime(unit).UTC()
	}
	return time.Time{}
}
