package transform

import (
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "id", Kind: table.KindInt, Values: []any{1, 2, 1, 3, 2}},
		table.Column{Name: "v", Kind: table.KindString, Values: []any{"a", nil, "a", "c", nil}},
	)

	out, removed, err := Dedupe(in)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []any{1, 2, 3}, col(t, out, "id").Values)
	assert.Equal(t, []any{"a", nil, "c"}, col(t, out, "v").Values)
	assert.Equal(t, 5, in.NumRows())
}

func TestDedupeIsIdempotent(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "x", Kind: table.KindFloat, Values: []any{1.0, 1.0, nil, nil, 2.0}},
	)

	once, n1, err := Dedupe(in)
	require.NoError(t, err)
	twice, n2, err := Dedupe(once)
	require.NoError(t, err)

	assert.Equal(t, 2, n1)
	assert.Equal(t, 0, n2)
	assert.True(t, table.Equal(once, twice))
}

func TestDedupeKeysDoNotCollide(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "a", Kind: table.KindString, Values: []any{"x;", "x"}},
		table.Column{Name: "b", Kind: table.KindString, Values: []any{"y", ";y"}},
	)

	_, removed, err := Dedupe(in)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDedupeNegativeZero(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "x", Kind: table.KindFloat, Values: []any{0.0, math.Copysign(0, -1), 1.0}},
	)
	out, removed, err := Dedupe(in)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, out.NumRows())

	loaded, err := table.Load(strings.NewReader("x,y\n0.0,a\n-0.0,a\n"))
	require.NoError(t, err)
	_, removed, err = Dedupe(loaded)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestDedupeZeroTable(t *testing.T) {
	out, removed, err := Dedupe(table.Table{})
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.True(t, out.IsZero())
}
