package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSheet is the sheet name used for spreadsheet exports.
const XLSXSheet = "data"

// FormatValue renders one cell for text export. Missing values are empty,
// floats use the shortest exact form and keep a ".0" on integral values so
// the column reloads as float.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		switch {
		case math.IsNaN(x):
			return ""
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		}
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(x)
	}
}

// Records returns the header followed by every row, formatted for export.
func (t Table) Records() [][]string {
	out := make([][]string, 0, t.NumRows()+1)
	out = append(out, t.Names())
	cols := t.Columns()
	for r := 0; r < t.NumRows(); r++ {
		rec := make([]string, len(cols))
		for c := range cols {
			rec[c] = FormatValue(cols[c].Values[r])
		}
		out = append(out, rec)
	}
	return out
}

// WriteCSV writes the header row and all data rows in order, with no index
// column.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// CSV returns the WriteCSV output as bytes.
func (t Table) CSV() ([]byte, error) {
	var b bytes.Buffer
	if err := t.WriteCSV(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// WriteXLSX writes the table as a single-sheet workbook. Numbers and bools
// are stored as typed cells; missing values are left blank.
func (t Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", XLSXSheet); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	header := make([]any, t.NumCols())
	for i, n := range t.Names() {
		header[i] = n
	}
	if err := f.SetSheetRow(XLSXSheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	cols := t.Columns()
	for r := 0; r < t.NumRows(); r++ {
		row := make([]any, len(cols))
		for c := range cols {
			row[c] = cols[c].Values[r]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		if err := f.SetSheetRow(XLSXSheet, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
