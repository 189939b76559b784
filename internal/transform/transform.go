// Package transform implements the table cleaning operations: missing value
// handling, duplicate removal, feature scaling and column type conversion.
//
// Every function is pure. The input table is never modified; the result is a
// new table, and on error the zero Table is returned alongside the error.
package transform

import (
	"errors"
	"math"
	"sort"
)

var (
	ErrInvalidStrategy  = errors.New("invalid missing value strategy")
	ErrInvalidMethod    = errors.New("invalid scaling method")
	ErrNoNumericColumns = errors.New("no numeric columns selected")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrConversion       = errors.New("conversion failed")
	ErrNonFinite        = errors.New("column contains infinite values")
)

// Sorted returns an ascending copy of x.
func Sorted(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	sort.Float64s(out)
	return out
}

// Quantile returns the p-quantile (0 <= p <= 1) of ascending data, linearly
// interpolating between the two closest ranks. It returns NaN for no data.
//
// gonum's stat.Quantile offers only the empirical and LinInterp estimators,
// neither of which matches this (R type 7) definition, so it is done here.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := p * float64(n-1)
	lo := int(h)
	frac := h - float64(lo)
	if lo+1 >= n {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Median is Quantile(x, 0.5) on unsorted data.
func Median(x []float64) float64 {
	return Quantile(Sorted(x), 0.5)
}
