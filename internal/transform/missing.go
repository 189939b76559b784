package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"gonum.org/v1/gonum/stat"
)

// Strategy selects how missing values are handled.
type Strategy int

const (
	DropRows Strategy = iota + 1
	FillMean
	FillMedian
	FillMode
)

var strategies = []struct {
	s     Strategy
	name  string
	label string
}{
	{DropRows, "drop", "Drop Rows with Missing Values"},
	{FillMean, "mean", "Fill with Mean"},
	{FillMedian, "median", "Fill with Median"},
	{FillMode, "mode", "Fill with Mode"},
}

func (s Strategy) String() string {
	for _, e := range strategies {
		if e.s == s {
			return e.name
		}
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Label is the name shown in the strategy selector.
func (s Strategy) Label() string {
	for _, e := range strategies {
		if e.s == s {
			return e.label
		}
	}
	return s.String()
}

// ParseStrategy accepts a strategy name (drop, mean, median, mode) or its
// selector label.
func ParseStrategy(v string) (Strategy, error) {
	v = strings.TrimSpace(v)
	for _, e := range strategies {
		if strings.EqualFold(v, e.name) || v == e.label {
			return e.s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, v)
}

// HandleMissing applies strategy s to t.
//
// DropRows removes every row with a missing value in any of the subset
// columns, or in any column when subset is empty. FillMean and FillMedian
// fill numeric columns with the statistic of their own present values and
// leave other columns alone. FillMode fills every column with its most
// frequent present value, the smallest one on ties. Columns with no present
// values stay missing.
func HandleMissing(t table.Table, s Strategy, subset ...string) (table.Table, error) {
	switch s {
	case DropRows:
		return dropMissing(t, subset)
	case FillMean:
		return fillNumeric(t, func(x []float64) float64 { return stat.Mean(x, nil) })
	case FillMedian:
		return fillNumeric(t, Median)
	case FillMode:
		return fillMode(t)
	default:
		return table.Table{}, fmt.Errorf("%w: %v", ErrInvalidStrategy, s)
	}
}

func dropMissing(t table.Table, subset []string) (table.Table, error) {
	if t.IsZero() {
		return t, nil
	}

	var check []table.Column
	if len(subset) == 0 {
		check = t.Columns()
	} else {
		for _, name := range subset {
			c, ok := t.Column(name)
			if !ok {
				return table.Table{}, fmt.Errorf("drop missing: %w: %q", ErrUnknownColumn, name)
			}
			check = append(check, c)
		}
	}

	keep := make([]int, 0, t.NumRows())
rows:
	for r := 0; r < t.NumRows(); r++ {
		for _, c := range check {
			if c.IsNA(r) {
				continue rows
			}
		}
		keep = append(keep, r)
	}
	return t.SelectRows(keep)
}

func fillNumeric(t table.Table, statistic func([]float64) float64) (table.Table, error) {
	var filled []table.Column
	for _, c := range t.Columns() {
		if !c.Kind.Numeric() || c.NullCount() == 0 {
			continue
		}
		present := c.Present()
		if len(present) == 0 {
			continue
		}
		fill := statistic(present)

		vals := make([]any, c.Len())
		for i, f := range c.Floats() {
			if math.IsNaN(f) {
				vals[i] = fill
			} else {
				vals[i] = f
			}
		}
		filled = append(filled, table.Column{Name: c.Name, Kind: table.KindFloat, Values: vals})
	}
	return t.Replace(filled...)
}

func fillMode(t table.Table) (table.Table, error) {
	var filled []table.Column
	for _, c := range t.Columns() {
		if c.NullCount() == 0 {
			continue
		}
		m, ok := mode(c.Values)
		if !ok {
			continue
		}
		out := c.Clone()
		for i, v := range out.Values {
			if v == nil {
				out.Values[i] = m
			}
		}
		filled = append(filled, out)
	}
	return t.Replace(filled...)
}

// mode returns the most frequent non-nil value, preferring the smallest on
// ties. ok is false when vals holds no present values.
func mode(vals []any) (any, bool) {
	counts := make(map[any]int)
	for _, v := range vals {
		if v != nil {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return nil, false
	}

	cands := make([]any, 0, len(counts))
	for v := range counts {
		cands = append(cands, v)
	}
	sort.Slice(cands, func(i, j int) bool { return less(cands[i], cands[j]) })

	best := cands[0]
	for _, v := range cands[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// less orders values of one column kind.
func less(a, b any) bool {
	switch x := a.(type) {
	case int:
		return x < b.(int)
	case float64:
		return x < b.(float64)
	case bool:
		return !x && b.(bool)
	case string:
		return x < b.(string)
	default:
		return fmt.Sprint(a) < fmt.Sprint(b)
	}
}
