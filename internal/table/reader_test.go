package table

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInputReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "utf-8 BOM", input: []byte("\xEF\xBB\xBFa,b"), expected: "a,b"},
		{name: "no BOM", input: []byte("a,b"), expected: "a,b"},
		{name: "empty", input: []byte{}, expected: ""},
		{name: "only BOM", input: []byte("\xEF\xBB\xBF"), expected: ""},
		{name: "short input", input: []byte("a"), expected: "a"},
		{name: "partial BOM", input: []byte("\xEF\xBBab"), expected: "\uFFFD\uFFFDab"},
		{name: "utf-16le BOM", input: []byte("\xFF\xFEa\x00,\x00b\x00"), expected: "a,b"},
		{name: "multibyte", input: []byte("café,naïve"), expected: "café,naïve"},
		{name: "invalid byte", input: []byte("he\x80lo"), expected: "he\uFFFDlo"},
		{name: "truncated rune at end", input: []byte("ok\xC3"), expected: "ok\uFFFD"},
		{name: "BOM then invalid byte", input: []byte("\xEF\xBB\xBFhe\x80lo"), expected: "he\uFFFDlo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewInputReader(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestNewInputReaderKeepsRunesSplitAcrossReads(t *testing.T) {
	input := "\uFEFFnaïve,日本"
	got, err := io.ReadAll(NewInputReader(iotest.OneByteReader(strings.NewReader(input))))
	require.NoError(t, err)
	assert.Equal(t, "naïve,日本", string(got))
}

func TestLoadRepairsInvalidUTF8(t *testing.T) {
	tbl, err := Load(bytes.NewReader([]byte("name\nbad\x80\n")))
	require.NoError(t, err)

	c, _ := tbl.Column("name")
	assert.Equal(t, []any{"bad\uFFFD"}, c.Values)
}
