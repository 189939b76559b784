package transform

import (
	"testing"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "i", Kind: table.KindInt, Values: []any{1, 0, 3}},
		table.Column{Name: "f", Kind: table.KindFloat, Values: []any{1.0, nil, 2.5}},
		table.Column{Name: "s", Kind: table.KindString, Values: []any{"4", " 5 ", "6.0"}},
		table.Column{Name: "b", Kind: table.KindString, Values: []any{"true", "F", nil}},
	)

	tests := []struct {
		name   string
		column string
		kind   table.Kind
		want   []any
	}{
		{"int to float", "i", table.KindFloat, []any{1.0, 0.0, 3.0}},
		{"int to string", "i", table.KindString, []any{"1", "0", "3"}},
		{"int to bool", "i", table.KindBool, []any{true, false, true}},
		{"float to string", "f", table.KindString, []any{"1.0", nil, "2.5"}},
		{"string to int", "s", table.KindInt, []any{4, 5, 6}},
		{"string to float", "s", table.KindFloat, []any{4.0, 5.0, 6.0}},
		{"string to bool", "b", table.KindBool, []any{true, false, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Convert(in, tt.column, tt.kind)
			require.NoError(t, err)

			c := col(t, out, tt.column)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.want, c.Values)
			assert.Equal(t, in.Names(), out.Names())
		})
	}
}

func TestConvertErrors(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "f", Kind: table.KindFloat, Values: []any{1.0, nil, 2.5}},
		table.Column{Name: "g", Kind: table.KindFloat, Values: []any{1.0, 2.5, 3.0}},
		table.Column{Name: "s", Kind: table.KindString, Values: []any{"x", "1", "2"}},
	)

	tests := []struct {
		name   string
		column string
		kind   table.Kind
		want   error
	}{
		{"unknown column", "nope", table.KindInt, ErrUnknownColumn},
		{"missing to int", "f", table.KindInt, ErrConversion},
		{"fraction to int", "g", table.KindInt, ErrConversion},
		{"text to float", "s", table.KindFloat, ErrConversion},
		{"text to bool", "s", table.KindBool, ErrConversion},
		{"bad kind", "s", table.Kind("date"), table.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(in, tt.column, tt.kind)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConvertErrorNamesColumnAndValue(t *testing.T) {
	in := table.MustFromColumns(
		table.Column{Name: "price", Kind: table.KindString, Values: []any{"1", "abc"}},
	)
	_, err := Convert(in, "price", table.KindFloat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")
	assert.Contains(t, err.Error(), `"abc"`)
}
