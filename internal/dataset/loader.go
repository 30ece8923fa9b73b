package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Load reads a case export, choosing the reader from the file extension.
func Load(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		return readWorkbook(f)
	case ".parquet":
		return readParquet(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadCSV parses a CSV stream with a header row. Short rows are padded with
// nulls; quoting is lenient.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}
	return fromRows(rows[0], rows[1:], nil)
}

// ReadXLSX reads the first sheet of a workbook stream.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) (*Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read rows: sheet %q is empty", sheet)
	}
	width := len(rows[0])
	for _, r := range rows[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	dateCols := make(map[int]bool)
	for c := 0; c < width; c++ {
		if isDateColumn(f, sheet, rows, c) {
			dateCols[c] = true
		}
	}
	return fromRows(rows[0], rows[1:], dateCols)
}

// isDateColumn looks at the number format of the first non-empty data cell.
// Raw cell values of date formatted cells are Excel serials.
func isDateColumn(f *excelize.File, sheet string, rows [][]string, col int) bool {
	for r := 1; r < len(rows); r++ {
		if col >= len(rows[r]) || strings.TrimSpace(rows[r][col]) == "" {
			continue
		}
		if _, err := strconv.ParseFloat(rows[r][col], 64); err != nil {
			return false
		}
		cell, err := excelize.CoordinatesToCellName(col+1, r+1)
		if err != nil {
			return false
		}
		idx, err := f.GetCellStyle(sheet, cell)
		if err != nil || idx == 0 {
			return false
		}
		style, err := f.GetStyle(idx)
		if err != nil || style == nil {
			return false
		}
		return isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	return false
}

func isDateNumFmt(id int, custom *string) bool {
	if custom != nil {
		l := strings.ToLower(*custom)
		return strings.Contains(l, "yy") || strings.Contains(l, "dd")
	}
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// fromRows builds a typed table from a header and string cells. Columns
// listed in dateCols hold Excel serial dates.
func fromRows(header []string, rows [][]string, dateCols map[int]bool) (*Table, error) {
	width := len(header)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	names := NormalizeHeaders(header, width)

	cols := make([]*Column, width)
	cells := make([]string, len(rows))
	for c := 0; c < width; c++ {
		for i, r := range rows {
			if c < len(r) {
				cells[i] = strings.TrimSpace(r[c])
			} else {
				cells[i] = ""
			}
		}
		if dateCols[c] {
			cols[c] = excelDates(names[c], cells)
			continue
		}
		cols[c] = inferColumn(names[c], cells)
	}
	t, err := NewTable(cols...)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return t, nil
}

// NormalizeHeaders fills blank headers with column_N and suffixes
// duplicates with _1, _2, ...
func NormalizeHeaders(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if used[name] {
			base := name
			for n := 1; ; n++ {
				cand := fmt.Sprintf("%s_%d", base, n)
				if !used[cand] {
					name = cand
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// inferColumn tries int, then float, then falls back to text. Blank cells
// are null and do not vote.
func inferColumn(name string, cells []string) *Column {
	valid := make([]bool, len(cells))
	present := 0
	for i, s := range cells {
		valid[i] = s != ""
		if valid[i] {
			present++
		}
	}
	if present > 0 {
		if ints, ok := parseInts(cells, valid); ok {
			return Ints(name, ints, valid)
		}
		if floats, ok := parseFloats(cells, valid); ok {
			return Floats(name, floats, valid)
		}
	}
	text := make([]string, len(cells))
	copy(text, cells)
	return Text(name, text)
}

func parseInts(cells []string, valid []bool) ([]int64, bool) {
	out := make([]int64, len(cells))
	for i, s := range cells {
		if !valid[i] {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseFloats(cells []string, valid []bool) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, s := range cells {
		if !valid[i] {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func excelDates(name string, cells []string) *Column {
	out := make([]time.Time, len(cells))
	for i, s := range cells {
		if s == "" {
			continue
		}
		serial, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			continue
		}
		out[i] = t.Round(time.Second)
	}
	return Times(name, out)
}
