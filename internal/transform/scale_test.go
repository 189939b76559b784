package transform

import (
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func scaleInput() table.Table {
	return table.MustFromColumns(
		table.Column{Name: "x", Kind: table.KindInt, Values: []any{3, 7, 1, 5, 9}},
		table.Column{Name: "y", Kind: table.KindFloat, Values: []any{0.5, nil, -2.0, 4.25, 1.0}},
		table.Column{Name: "k", Kind: table.KindFloat, Values: []any{2.0, 2.0, 2.0, 2.0, 2.0}},
		table.Column{Name: "s", Kind: table.KindString, Values: []any{"a", "b", "c", "d", "e"}},
	)
}

func floatsOf(t *testing.T, c table.Column) []float64 {
	t.Helper()
	var out []float64
	for _, v := range c.Values {
		if v == nil {
			continue
		}
		f, ok := v.(float64)
		require.True(t, ok, "value %v is %T", v, v)
		out = append(out, f)
	}
	return out
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"normalize":             Normalize,
		"Standardize":           Standardize,
		"Normalize (Min-Max)":   Normalize,
		"Standardize (Z-score)": Standardize,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMethod("robust")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestNormalize(t *testing.T) {
	out, err := Scale(scaleInput(), []string{"x", "y", "k"}, Normalize)
	require.NoError(t, err)

	x := col(t, out, "x")
	assert.Equal(t, table.KindFloat, x.Kind)
	assert.Equal(t, []any{0.25, 0.75, 0.0, 0.5, 1.0}, x.Values)

	y := col(t, out, "y")
	assert.Nil(t, y.Values[1], "missing stays missing")
	for _, f := range floatsOf(t, y) {
		assert.True(t, f >= 0 && f <= 1, "%v out of range", f)
	}
	assert.Equal(t, 0.0, y.Values[2])
	assert.Equal(t, 1.0, y.Values[3])

	assert.Equal(t, []any{0.0, 0.0, 0.0, 0.0, 0.0}, col(t, out, "k").Values)
	assert.Equal(t, col(t, scaleInput(), "s").Values, col(t, out, "s").Values)
}

func TestStandardize(t *testing.T) {
	out, err := Scale(scaleInput(), []string{"x", "y", "k"}, Standardize)
	require.NoError(t, err)

	for _, name := range []string{"x", "y"} {
		vals := floatsOf(t, col(t, out, name))
		mean, std := stat.PopMeanStdDev(vals, nil)
		assert.InDelta(t, 0, mean, 1e-12, name)
		assert.InDelta(t, 1, std, 1e-12, name)
	}
	assert.Nil(t, col(t, out, "y").Values[1])
	assert.Equal(t, []any{0.0, 0.0, 0.0, 0.0, 0.0}, col(t, out, "k").Values)
}

func TestStandardizeTwiceRefits(t *testing.T) {
	once, err := Scale(scaleInput(), []string{"x"}, Standardize)
	require.NoError(t, err)
	twice, err := Scale(once, []string{"x"}, Standardize)
	require.NoError(t, err)

	a, b := floatsOf(t, col(t, once, "x")), floatsOf(t, col(t, twice, "x"))
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-12)
	}
}

func TestScaleConstantColumnWithRoundingNoise(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "c", Kind: table.KindFloat, Values: []any{0.1, 0.1, 0.1}},
	)
	out, err := Scale(in, []string{"c"}, Standardize)
	require.NoError(t, err)
	assert.Equal(t, []any{0.0, 0.0, 0.0}, col(t, out, "c").Values)
}

func TestScaleErrors(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		method  Method
		want    error
	}{
		{"absent column", []string{"b_nonexistent"}, Normalize, ErrNoNumericColumns},
		{"non-numeric column", []string{"s"}, Standardize, ErrNoNumericColumns},
		{"no columns", nil, Normalize, ErrNoNumericColumns},
		{"bad method", []string{"x"}, Method(9), ErrInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scale(scaleInput(), tt.columns, tt.method)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScaleNonFiniteColumn(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		method Method
	}{
		{"inf value normalized", "a\ninf\n1\n2\n", Normalize},
		{"-inf value standardized", "a\n-inf\n1\n2\n", Standardize},
		{"range overflows", "a\n1e308\n-1e308\n0\n", Normalize},
		{"moments overflow", "a\n1e308\n-1e308\n0\n", Standardize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := table.Load(strings.NewReader(tt.csv))
			require.NoError(t, err)
			require.Equal(t, table.KindFloat, col(t, in, "a").Kind)

			out, err := Scale(in, []string{"a"}, tt.method)
			assert.ErrorIs(t, err, ErrNonFinite)
			assert.ErrorContains(t, err, `"a"`)
			assert.True(t, out.IsZero())
		})
	}
}

func TestNormalizeLargeFiniteRange(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "a", Kind: table.KindFloat, Values: []any{1e307, -1e307, 0.0}},
	)
	out, err := Scale(in, []string{"a"}, Normalize)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0.5}, floatsOf(t, col(t, out, "a")))
}

func TestScaleAllMissingColumn(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "m", Kind: table.KindFloat, Values: []any{nil, nil}},
	)
	out, err := Scale(in, []string{"m"}, Normalize)
	require.NoError(t, err)
	assert.Equal(t, 2, col(t, out, "m").NullCount())
}

func TestQuantile(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(data, 0))
	assert.Equal(t, 1.75, Quantile(data, 0.25))
	assert.Equal(t, 2.5, Quantile(data, 0.5))
	assert.Equal(t, 3.25, Quantile(data, 0.75))
	assert.Equal(t, 4.0, Quantile(data, 1))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.75))
}
