package transform

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/tidycsv/internal/table"
)

// Dedupe removes rows that repeat an earlier row across all columns, keeping
// the first occurrence. Missing values compare equal to each other. It
// returns the number of rows removed.
func Dedupe(t table.Table) (table.Table, int, error) {
	if t.IsZero() {
		return t, 0, nil
	}

	cols := t.Columns()
	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]int, 0, t.NumRows())

	var key strings.Builder
	for r := 0; r < t.NumRows(); r++ {
		key.Reset()
		for _, c := range cols {
			writeKey(&key, c.Values[r])
		}
		k := key.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep = append(keep, r)
	}

	out, err := t.SelectRows(keep)
	if err != nil {
		return table.Table{}, 0, fmt.Errorf("dedupe: %w", err)
	}
	return out, t.NumRows() - len(keep), nil
}

// writeKey appends one cell to a row key. The length prefix keeps cells
// from running into each other. -0 and 0 share a key.
func writeKey(b *strings.Builder, v any) {
	if v == nil {
		b.WriteString("-;")
		return
	}
	if f, ok := v.(float64); ok && f == 0 {
		v = 0.0
	}
	s := fmt.Sprint(v)
	fmt.Fprintf(b, "%d:%s;", len(s), s)
}
