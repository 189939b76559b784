package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Method selects a feature scaling method.
type Method int

const (
	Normalize Method = iota + 1
	Standardize
)

var methods = []struct {
	m     Method
	name  string
	label string
}{
	{Normalize, "normalize", "Normalize (Min-Max)"},
	{Standardize, "standardize", "Standardize (Z-score)"},
}

func (m Method) String() string {
	for _, e := range methods {
		if e.m == m {
			return e.name
		}
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Label is the name shown in the method selector.
func (m Method) Label() string {
	for _, e := range methods {
		if e.m == m {
			return e.label
		}
	}
	return m.String()
}

// ParseMethod accepts normalize, standardize or a selector label.
func ParseMethod(v string) (Method, error) {
	v = strings.TrimSpace(v)
	for _, e := range methods {
		if strings.EqualFold(v, e.name) || v == e.label {
			return e.m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMethod, v)
}

// Scale rescales the numeric columns among columns. Names that are unknown
// or not numeric are skipped; if none remain, ErrNoNumericColumns is
// returned.
//
// Parameters are fitted per column on the current present values, so
// scaling twice re-fits on already scaled data. Normalize maps min to 0 and
// max to 1. Standardize subtracts the mean and divides by the population
// standard deviation. A constant column becomes all 0 under either method.
// Missing values stay missing and every scaled column becomes float.
//
// A column holding inf or -inf, or whose range or moments overflow float64,
// fails with ErrNonFinite.
func Scale(t table.Table, columns []string, m Method) (table.Table, error) {
	if m != Normalize && m != Standardize {
		return table.Table{}, fmt.Errorf("%w: %v", ErrInvalidMethod, m)
	}

	var targets []table.Column
	picked := make(map[string]bool, len(columns))
	for _, name := range columns {
		if picked[name] {
			continue
		}
		c, ok := t.Column(name)
		if !ok || !c.Kind.Numeric() {
			continue
		}
		picked[name] = true
		targets = append(targets, c)
	}
	if len(targets) == 0 {
		return table.Table{}, fmt.Errorf("%w: %s", ErrNoNumericColumns, strings.Join(columns, ", "))
	}

	scaled := make([]table.Column, len(targets))
	for i, c := range targets {
		sc, err := scaleColumn(c, m)
		if err != nil {
			return table.Table{}, err
		}
		scaled[i] = sc
	}
	return t.Replace(scaled...)
}

func scaleColumn(c table.Column, m Method) (table.Column, error) {
	out := table.Column{Name: c.Name, Kind: table.KindFloat, Values: make([]any, c.Len())}

	present := c.Present()
	if len(present) == 0 {
		return out, nil
	}

	lo, hi := floats.Min(present), floats.Max(present)
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return table.Column{}, fmt.Errorf("%w: %q", ErrNonFinite, c.Name)
	}
	var shift, div float64
	switch m {
	case Normalize:
		shift, div = lo, hi-lo
	case Standardize:
		shift, div = stat.PopMeanStdDev(present, nil)
	}
	if math.IsInf(shift, 0) || math.IsInf(div, 0) || math.IsNaN(shift) || math.IsNaN(div) {
		return table.Column{}, fmt.Errorf("%w: %q: range too large to scale", ErrNonFinite, c.Name)
	}
	constant := lo == hi || div == 0

	for i, x := range c.Floats() {
		switch {
		case math.IsNaN(x):
			out.Values[i] = nil
		case constant:
			out.Values[i] = 0.0
		default:
			out.Values[i] = (x - shift) / div
		}
	}
	return out, nil
}
