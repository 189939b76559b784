package transform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tidycsv/internal/table"
)

// Convert casts column to kind. Missing values stay missing, except that an
// int column cannot hold them. A value that cannot be represented in the
// target kind fails the whole conversion with ErrConversion.
func Convert(t table.Table, column string, kind table.Kind) (table.Table, error) {
	c, ok := t.Column(column)
	if !ok {
		return table.Table{}, fmt.Errorf("convert: %w: %q", ErrUnknownColumn, column)
	}
	switch kind {
	case table.KindInt, table.KindFloat, table.KindBool, table.KindString:
	default:
		return table.Table{}, fmt.Errorf("convert: %w: %q", table.ErrInvalidKind, kind)
	}
	if c.Kind == kind {
		return t.Copy(), nil
	}

	vals := make([]any, c.Len())
	for i, v := range c.Values {
		cv, err := convertValue(v, kind)
		if err != nil {
			return table.Table{}, fmt.Errorf("%w: %s to %s: row %d: %v",
				ErrConversion, column, kind, i+1, err)
		}
		vals[i] = cv
	}
	return t.Replace(table.Column{Name: column, Kind: kind, Values: vals})
}

var errMissing = errors.New("missing value")

func convertValue(v any, kind table.Kind) (any, error) {
	if v == nil {
		if kind == table.KindInt {
			return nil, errMissing
		}
		return nil, nil
	}

	switch kind {
	case table.KindString:
		return table.FormatValue(v), nil
	case table.KindFloat:
		return toFloat(v)
	case table.KindInt:
		return toInt(v)
	case table.KindBool:
		return toBool(v)
	}
	return nil, fmt.Errorf("unsupported kind %q", kind)
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case bool:
		if x {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported value %v", v)
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		if math.IsInf(x, 0) || x != math.Trunc(x) {
			return nil, fmt.Errorf("%s is not an integer", table.FormatValue(x))
		}
		return int(x), nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
		return int(f), nil
	}
	return nil, fmt.Errorf("unsupported value %v", v)
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", x)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported value %v", v)
}
