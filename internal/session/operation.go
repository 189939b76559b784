package session

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/tidycsv/internal/table"
	"github.com/JonMunkholm/tidycsv/internal/transform"
)

// Operation is a user action applied to the current table. The set of
// operations is closed: MissingOp, DedupeOp, ScaleOp and ConvertOp.
type Operation interface {
	// Name identifies the operation in history, logs and metrics.
	Name() string
	// Detail describes the parameters for the history view.
	Detail() string
	operation()
}

// None is the neutral missing value selection. Applying it changes nothing.
const None transform.Strategy = 0

// MissingOp handles missing values with Strategy. Subset limits which
// columns are checked by the drop strategy.
type MissingOp struct {
	Strategy transform.Strategy
	Subset   []string
}

// DedupeOp removes duplicate rows.
type DedupeOp struct{}

// ScaleOp rescales Columns with Method.
type ScaleOp struct {
	Columns []string
	Method  transform.Method
}

// ConvertOp casts Column to Kind.
type ConvertOp struct {
	Column string
	Kind   table.Kind
}

func (MissingOp) Name() string { return "missing" }
func (DedupeOp) Name() string  { return "dedupe" }
func (ScaleOp) Name() string   { return "scale" }
func (ConvertOp) Name() string { return "convert" }

func (o MissingOp) Detail() string {
	if o.Strategy == None {
		return "None"
	}
	if len(o.Subset) > 0 {
		return fmt.Sprintf("%s (columns: %s)", o.Strategy.Label(), strings.Join(o.Subset, ", "))
	}
	return o.Strategy.Label()
}

func (DedupeOp) Detail() string { return "Remove Duplicates" }

func (o ScaleOp) Detail() string {
	return fmt.Sprintf("%s (columns: %s)", o.Method.Label(), strings.Join(o.Columns, ", "))
}

func (o ConvertOp) Detail() string {
	return fmt.Sprintf("%s to %s", o.Column, o.Kind)
}

func (MissingOp) operation() {}
func (DedupeOp) operation()  {}
func (ScaleOp) operation()   {}
func (ConvertOp) operation() {}

func missingMessage(s transform.Strategy) string {
	switch s {
	case transform.DropRows:
		return "Dropped rows with missing values."
	case transform.FillMean:
		return "Filled missing values with the mean."
	case transform.FillMedian:
		return "Filled missing values with the median."
	case transform.FillMode:
		return "Filled missing values with the mode."
	}
	return ""
}
