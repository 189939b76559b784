package table

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// NewInputReader wraps an upload before CSV parsing. A leading UTF-8 byte
// order mark is dropped, a UTF-16 one switches decoding to UTF-16, and
// ill-formed UTF-8 is replaced with U+FFFD.
func NewInputReader(r io.Reader) io.Reader {
	return transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(transform.Nop),
		runes.ReplaceIllFormed(),
	))
}
