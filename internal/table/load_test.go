package table

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDetectsKinds(t *testing.T) {
	in := "id,name,score,active\n1,alice,3.5,true\n2,,4,false\n3,carol,,true\n"

	tbl, err := Load(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"id", "name", "score", "active"}, tbl.Names())
	assert.Equal(t, []Kind{KindInt, KindString, KindFloat, KindBool}, tbl.Kinds())

	name, ok := tbl.Column("name")
	require.True(t, ok)
	assert.Equal(t, []any{"alice", nil, "carol"}, name.Values)

	score, _ := tbl.Column("score")
	assert.Equal(t, []any{3.5, 4.0, nil}, score.Values)
	assert.Equal(t, 1, score.NullCount())
}

func TestLoadNATokens(t *testing.T) {
	in := "a,b\nNA,x\nnull,y\nN/A,z\n5,NaN\n"

	tbl, err := Load(strings.NewReader(in))
	require.NoError(t, err)

	a, _ := tbl.Column("a")
	assert.Equal(t, KindFloat, a.Kind, "int column with gaps is upcast")
	assert.Equal(t, []any{nil, nil, nil, 5.0}, a.Values)

	b, _ := tbl.Column("b")
	assert.Equal(t, []any{"x", "y", "z", nil}, b.Values)
}

func TestLoadIntWithoutGapsStaysInt(t *testing.T) {
	tbl, err := Load(strings.NewReader("a\n1\n2\n"))
	require.NoError(t, err)

	a, _ := tbl.Column("a")
	assert.Equal(t, KindInt, a.Kind)
	assert.Equal(t, []any{1, 2}, a.Values)
}

func TestLoadAllMissingColumnIsFloat(t *testing.T) {
	tbl, err := Load(strings.NewReader("a,b\n1,\n2,NA\n"))
	require.NoError(t, err)

	b, _ := tbl.Column("b")
	assert.Equal(t, KindFloat, b.Kind)
	assert.Equal(t, 2, b.NullCount())
}

func TestLoadHeaderOnly(t *testing.T) {
	tbl, err := Load(strings.NewReader("a,b,c\n"))
	require.NoError(t, err)

	assert.False(t, tbl.IsZero())
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Names())
}

func TestLoadShortRowsArePadded(t *testing.T) {
	tbl, err := Load(strings.NewReader("a,b,c\n1,2,3\n4\n"))
	require.NoError(t, err)

	c, _ := tbl.Column("c")
	assert.Equal(t, []any{3.0, nil}, c.Values)
}

func TestLoadStripsBOM(t *testing.T) {
	tbl, err := Load(strings.NewReader("\uFEFFid,v\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "v"}, tbl.Names())
}

func TestLoadErrors(t *testing.T) {
	t.Run("nil reader", func(t *testing.T) {
		_, err := Load(nil)
		assert.ErrorIs(t, err, ErrNoFile)

		var le *LoadError
		assert.False(t, errors.As(err, &le), "no file is not a load error")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Load(strings.NewReader(""))
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("row longer than header", func(t *testing.T) {
		_, err := Load(strings.NewReader("a,b\n1,2\n3,4,5\n"))
		var le *LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, 3, le.Line)
		assert.Contains(t, err.Error(), "line 3")
	})
}
