// Package table provides the in-memory tabular dataset used by the cleaning
// session: a typed, immutable view over a gota DataFrame.
//
// A Table is a value. Every method that changes data returns a new Table and
// accessors hand out detached copies, so a Table held by one owner (for
// example a session's original upload) can never be changed through another.
//
// Missing values are gota NA elements. In a detached Column they are nil.
package table

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Kind is the value type of a column.
type Kind string

const (
	KindInt    Kind = Kind(series.Int)
	KindFloat  Kind = Kind(series.Float)
	KindBool   Kind = Kind(series.Bool)
	KindString Kind = Kind(series.String)
)

// ParseKind maps a user supplied type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "int64", "integer":
		return KindInt, nil
	case "float", "float64", "number":
		return KindFloat, nil
	case "bool", "boolean":
		return KindBool, nil
	case "string", "str", "object", "text":
		return KindString, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Numeric reports whether the kind takes part in numeric operations
// (mean/median fill, scaling, descriptive statistics).
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// DType returns the familiar dataframe dtype label for display.
func (k Kind) DType() string {
	switch k {
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	default:
		return "object"
	}
}

// Column is a detached copy of one table column. Missing entries are nil;
// present entries are int, float64, bool or string according to Kind.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Len returns the number of entries.
func (c Column) Len() int { return len(c.Values) }

// IsNA reports whether entry i is missing.
func (c Column) IsNA(i int) bool { return c.Values[i] == nil }

// NullCount returns the number of missing entries.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// Floats returns every entry as float64, with NaN for missing or
// non-numeric entries.
func (c Column) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		out[i] = toFloat(v)
	}
	return out
}

// Present returns the non-missing entries as float64 in row order.
func (c Column) Present() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f := toFloat(v); !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a copy whose Values slice is not shared.
func (c Column) Clone() Column {
	vals := make([]any, len(c.Values))
	copy(vals, c.Values)
	return Column{Name: c.Name, Kind: c.Kind, Values: vals}
}

func (c Column) series() series.Series {
	vals := make([]any, len(c.Values))
	copy(vals, c.Values)
	return series.New(vals, series.Type(c.Kind), c.Name)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return math.NaN()
	}
}

func columnFromSeries(s series.Series) Column {
	vals := make([]any, s.Len())
	for i := range vals {
		vals[i] = s.Val(i)
	}
	return Column{Name: s.Name, Kind: Kind(s.Type()), Values: vals}
}

// Table is an ordered set of equally long, uniquely named columns.
// The zero Table has no columns.
type Table struct {
	df dataframe.DataFrame
}

// FromColumns builds a Table from columns of equal length.
// Duplicate or empty names are made unique the same way the loader does.
func FromColumns(cols ...Column) (Table, error) {
	if len(cols) == 0 {
		return Table{}, fmt.Errorf("build table: no columns")
	}
	ss := make([]series.Series, len(cols))
	for i, c := range cols {
		ss[i] = c.series()
		if ss[i].Err != nil {
			return Table{}, fmt.Errorf("build table: column %q: %w", c.Name, ss[i].Err)
		}
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return Table{}, fmt.Errorf("build table: %w", df.Err)
	}
	return Table{df: df}, nil
}

// MustFromColumns is FromColumns for fixtures; it panics on error.
func MustFromColumns(cols ...Column) Table {
	t, err := FromColumns(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// IsZero reports whether t holds no columns (no table loaded).
func (t Table) IsZero() bool { return t.df.Ncol() == 0 }

// NumRows returns the row count.
func (t Table) NumRows() int { return t.df.Nrow() }

// NumCols returns the column count.
func (t Table) NumCols() int { return t.df.Ncol() }

// Names returns the column names in order.
func (t Table) Names() []string { return t.df.Names() }

// Kinds returns the column kinds in order.
func (t Table) Kinds() []Kind {
	types := t.df.Types()
	out := make([]Kind, len(types))
	for i, ty := range types {
		out[i] = Kind(ty)
	}
	return out
}

// Kind returns the kind of the named column.
func (t Table) Kind(name string) (Kind, bool) {
	for i, n := range t.df.Names() {
		if n == name {
			return Kind(t.df.Types()[i]), true
		}
	}
	return "", false
}

// NumericColumns returns the names of int and float columns in order.
func (t Table) NumericColumns() []string {
	var out []string
	kinds := t.Kinds()
	for i, n := range t.Names() {
		if kinds[i].Numeric() {
			out = append(out, n)
		}
	}
	return out
}

// Column returns a detached copy of the named column.
func (t Table) Column(name string) (Column, bool) {
	if _, ok := t.Kind(name); !ok {
		return Column{}, false
	}
	return columnFromSeries(t.df.Col(name)), true
}

// Columns returns detached copies of all columns in order.
func (t Table) Columns() []Column {
	names := t.df.Names()
	out := make([]Column, len(names))
	for i, n := range names {
		out[i] = columnFromSeries(t.df.Col(n))
	}
	return out
}

// Row returns the values of row i in column order (nil for missing).
func (t Table) Row(i int) []any {
	out := make([]any, t.df.Ncol())
	for j := range out {
		out[j] = t.df.Elem(i, j).Val()
	}
	return out
}

// Copy returns an independent copy of t.
func (t Table) Copy() Table {
	if t.IsZero() {
		return t
	}
	return Table{df: t.df.Copy()}
}

// Replace returns a new Table in which each given column replaces the
// existing column of the same name. Positions are kept.
func (t Table) Replace(cols ...Column) (Table, error) {
	if len(cols) == 0 {
		return t.Copy(), nil
	}
	df := t.df
	for _, c := range cols {
		if _, ok := t.Kind(c.Name); !ok {
			return Table{}, fmt.Errorf("replace column: unknown column %q", c.Name)
		}
		if c.Len() != t.NumRows() {
			return Table{}, fmt.Errorf("replace column %q: %d values for %d rows", c.Name, c.Len(), t.NumRows())
		}
		df = df.Mutate(c.series())
		if df.Err != nil {
			return Table{}, fmt.Errorf("replace column %q: %w", c.Name, df.Err)
		}
	}
	return Table{df: df}, nil
}

// SelectRows returns a new Table holding the given rows in the given order.
func (t Table) SelectRows(rows []int) (Table, error) {
	idx := make([]int, len(rows))
	copy(idx, rows)
	for _, r := range idx {
		if r < 0 || r >= t.NumRows() {
			return Table{}, fmt.Errorf("select rows: index %d out of range", r)
		}
	}
	if t.IsZero() {
		return t, nil
	}
	df := t.df.Subset(idx)
	if df.Err != nil {
		return Table{}, fmt.Errorf("select rows: %w", df.Err)
	}
	return Table{df: df}, nil
}

// Head returns the first n rows (fewer if the table is shorter).
func (t Table) Head(n int) Table {
	if t.IsZero() {
		return t
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}
	if n < 0 {
		n = 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	head, err := t.SelectRows(idx)
	if err != nil {
		return t.Copy()
	}
	return head
}

// Equal reports whether a and b have the same names, kinds and values,
// treating missing entries as equal to each other.
func Equal(a, b Table) bool {
	if a.NumCols() != b.NumCols() || a.NumRows() != b.NumRows() {
		return false
	}
	ac, bc := a.Columns(), b.Columns()
	for i := range ac {
		if ac[i].Name != bc[i].Name || ac[i].Kind != bc[i].Kind {
			return false
		}
		for r := range ac[i].Values {
			if ac[i].Values[r] != bc[i].Values[r] {
				return false
			}
		}
	}
	return true
}
