package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrNoFile is returned when there is nothing to load yet. Callers use it
	// to tell "no file chosen" apart from "file present but invalid".
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned (inside a LoadError) for input without a header.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidKind is returned for an unrecognised column type name.
	ErrInvalidKind = errors.New("invalid column type")
)

// NATokens are the cell values read as missing. The set mirrors the usual
// dataframe defaults so files exported by spreadsheet tools load as expected.
var NATokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null", "<nil>",
}

// LoadError reports input that is present but cannot be read as a table.
type LoadError struct {
	Line int // 1-based line of the offending record, 0 if unknown
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid csv: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("invalid csv: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load parses comma separated text with a header row into a Table.
//
// A nil reader yields ErrNoFile. Anything else that cannot be parsed yields
// a *LoadError. Data rows shorter than the header are padded with missing
// values; longer rows are an error.
func Load(r io.Reader) (Table, error) {
	if r == nil {
		return Table{}, ErrNoFile
	}

	records, err := readRecords(NewInputReader(r))
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, &LoadError{Err: ErrEmptyFile}
	}
	if len(records) == 1 {
		return headerOnly(records[0])
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(NATokens),
	)
	if df.Err != nil {
		return Table{}, &LoadError{Err: df.Err}
	}
	return Table{df: normalizeTypes(df)}, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	width := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &LoadError{Line: pe.Line, Err: pe.Err}
			}
			return nil, &LoadError{Err: err}
		}

		if records == nil {
			width = len(rec)
		} else if len(rec) > width {
			line, _ := cr.FieldPos(0)
			return nil, &LoadError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", width, len(rec)),
			}
		} else if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rec = padded
		}
		records = append(records, rec)
	}
	return records, nil
}

// headerOnly builds a zero-row table. gota refuses to load records without
// data rows, so the columns are assembled directly.
func headerOnly(header []string) (Table, error) {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, series.String, name)
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return Table{}, &LoadError{Line: 1, Err: df.Err}
	}
	return Table{df: df}, nil
}

// normalizeTypes upcasts int columns holding missing values to float, and
// types columns with no values at all as float, so numeric columns behave
// the same whether or not they have gaps.
func normalizeTypes(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		s := df.Col(name)
		switch {
		case s.Type() == series.Int && s.HasNaN():
			df = df.Mutate(series.New(s.Float(), series.Float, name))
		case s.Type() == series.String && s.Len() > 0 && allNA(s):
			df = df.Mutate(series.New(s.Float(), series.Float, name))
		}
	}
	return df
}

func allNA(s series.Series) bool {
	for _, na := range s.IsNaN() {
		if !na {
			return false
		}
	}
	return true
}
