// Package summary computes the read-only overview of a table shown to the
// user: missing value counts, column types and descriptive statistics.
package summary

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/transform"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name    string     `json:"name"`
	Kind    table.Kind `json:"kind"`
	DType   string     `json:"dtype"`
	NonNull int        `json:"non_null"`
	Nulls   int        `json:"nulls"`
}

// Stats holds the descriptive statistics of one numeric column. Fields are
// nil when undefined: everything but Count for a column with no values, and
// Std for a column with a single value.
type Stats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Q50    *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

// Summary is a snapshot of a table. It is never cached; compute a new one
// after every change.
type Summary struct {
	Rows     int          `json:"rows"`
	Columns  int          `json:"columns"`
	Info     []ColumnInfo `json:"info"`
	Describe []Stats      `json:"describe"`
}

// Summarize computes the summary of t without modifying it.
func Summarize(t table.Table) Summary {
	s := Summary{
		Rows:     t.NumRows(),
		Columns:  t.NumCols(),
		Info:     make([]ColumnInfo, 0, t.NumCols()),
		Describe: []Stats{},
	}
	for _, c := range t.Columns() {
		nulls := c.NullCount()
		s.Info = append(s.Info, ColumnInfo{
			Name:    c.Name,
			Kind:    c.Kind,
			DType:   c.Kind.DType(),
			NonNull: c.Len() - nulls,
			Nulls:   nulls,
		})
		if c.Kind.Numeric() {
			s.Describe = append(s.Describe, describe(c))
		}
	}
	return s
}

func describe(c table.Column) Stats {
	x := c.Present()
	st := Stats{Column: c.Name, Count: len(x)}
	if len(x) == 0 {
		return st
	}

	sorted := transform.Sorted(x)
	st.Mean = ptr(stat.Mean(x, nil))
	if len(x) > 1 {
		st.Std = ptr(stat.StdDev(x, nil))
	}
	st.Min = ptr(floats.Min(x))
	st.Q25 = ptr(transform.Quantile(sorted, 0.25))
	st.Q50 = ptr(transform.Quantile(sorted, 0.5))
	st.Q75 = ptr(transform.Quantile(sorted, 0.75))
	st.Max = ptr(floats.Max(x))
	return st
}

func ptr(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

// Text renders the summary as three plain text blocks: missing value
// counts, column types, and descriptive statistics.
func (s Summary) Text() string {
	var b strings.Builder

	b.WriteString("Missing Values Count\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, ci := range s.Info {
		fmt.Fprintf(tw, "%s\t%d\n", ci.Name, ci.Nulls)
	}
	tw.Flush()

	b.WriteString("\nData Types and Info\n")
	fmt.Fprintf(&b, "%d entries, %d columns\n", s.Rows, s.Columns)
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tColumn\tNon-Null Count\tDtype")
	for i, ci := range s.Info {
		fmt.Fprintf(tw, "%d\t%s\t%d non-null\t%s\n", i, ci.Name, ci.NonNull, ci.DType)
	}
	tw.Flush()

	b.WriteString("\nDescriptive Statistics\n")
	if len(s.Describe) == 0 {
		b.WriteString("no numeric columns\n")
		return b.String()
	}
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{""}
	for _, st := range s.Describe {
		header = append(header, st.Column)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	rows := []struct {
		label string
		get   func(Stats) string
	}{
		{"count", func(st Stats) string { return fmt.Sprintf("%.6f", float64(st.Count)) }},
		{"mean", func(st Stats) string { return num(st.Mean) }},
		{"std", func(st Stats) string { return num(st.Std) }},
		{"min", func(st Stats) string { return num(st.Min) }},
		{"25%", func(st Stats) string { return num(st.Q25) }},
		{"50%", func(st Stats) string { return num(st.Q50) }},
		{"75%", func(st Stats) string { return num(st.Q75) }},
		{"max", func(st Stats) string { return num(st.Max) }},
	}
	for _, r := range rows {
		cells := []string{r.label}
		for _, st := range s.Describe {
			cells = append(cells, r.get(st))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	tw.Flush()
	return b.String()
}

func num(f *float64) string {
	if f == nil {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", *f)
}
