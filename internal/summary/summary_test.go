package summary

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() table.Table {
	return table.MustFromColumns(
		table.Column{Name: "a", Kind: table.KindFloat, Values: []any{1.0, 2.0, nil, 4.0}},
		table.Column{Name: "n", Kind: table.KindInt, Values: []any{10, 20, 30, 40}},
		table.Column{Name: "s", Kind: table.KindString, Values: []any{"x", nil, nil, "y"}},
	)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 3, s.Columns)
	assert.Equal(t, []ColumnInfo{
		{Name: "a", Kind: table.KindFloat, DType: "float64", NonNull: 3, Nulls: 1},
		{Name: "n", Kind: table.KindInt, DType: "int64", NonNull: 4, Nulls: 0},
		{Name: "s", Kind: table.KindString, DType: "object", NonNull: 2, Nulls: 2},
	}, s.Info)

	require.Len(t, s.Describe, 2, "only numeric columns are described")

	a := s.Describe[0]
	assert.Equal(t, "a", a.Column)
	assert.Equal(t, 3, a.Count)
	assert.InDelta(t, 7.0/3, *a.Mean, 1e-12)
	assert.InDelta(t, 1.527525231651947, *a.Std, 1e-12, "sample standard deviation")
	assert.Equal(t, 1.0, *a.Min)
	assert.Equal(t, 1.5, *a.Q25)
	assert.Equal(t, 2.0, *a.Q50)
	assert.Equal(t, 3.0, *a.Q75)
	assert.Equal(t, 4.0, *a.Max)

	n := s.Describe[1]
	assert.Equal(t, 17.5, *n.Q25)
	assert.Equal(t, 25.0, *n.Q50)
	assert.Equal(t, 32.5, *n.Q75)
}

func TestSummarizeDoesNotModifyTable(t *testing.T) {
	tbl := sample()
	before := tbl.Copy()
	_ = Summarize(tbl)
	assert.True(t, table.Equal(before, tbl))
}

func TestSummarizeZeroRows(t *testing.T) {
	tbl, err := table.Load(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	tbl, err = tbl.Replace(table.Column{Name: "a", Kind: table.KindFloat, Values: []any{}})
	require.NoError(t, err)

	s := Summarize(tbl)
	assert.Equal(t, 0, s.Rows)
	require.Len(t, s.Describe, 1)
	assert.Equal(t, 0, s.Describe[0].Count)
	assert.Nil(t, s.Describe[0].Mean)
	assert.Nil(t, s.Describe[0].Max)

	text := s.Text()
	assert.Contains(t, text, "NaN")
}

func TestSummarizeSingleValueHasNoStd(t *testing.T) {
	tbl := table.MustFromColumns(table.Column{Name: "v", Kind: table.KindFloat, Values: []any{5.0, nil}})
	s := Summarize(tbl)
	require.Len(t, s.Describe, 1)
	assert.Nil(t, s.Describe[0].Std)
	assert.Equal(t, 5.0, *s.Describe[0].Mean)
}

func TestText(t *testing.T) {
	text := Summarize(sample()).Text()

	for _, want := range []string{
		"Missing Values Count",
		"Data Types and Info",
		"4 entries, 3 columns",
		"3 non-null",
		"float64",
		"object",
		"Descriptive Statistics",
		"count",
		"2.333333",
		"25.000000",
	} {
		assert.Contains(t, text, want)
	}
}

func TestTextWithoutNumericColumns(t *testing.T) {
	tbl := table.MustFromColumns(table.Column{Name: "s", Kind: table.KindString, Values: []any{"x"}})
	assert.Contains(t, Summarize(tbl).Text(), "no numeric columns")
}
