// =============================================================================
// Parquet Converter - Type Coercion Module
// =============================================================================
//
// This module converts untyped text columns into the semantic types declared
// in the model document.
//
// COERCION RULES:
//   | Type             | Result kind   | Unparseable value | Null value |
//   |------------------|---------------|-------------------|------------|
//   | datetime         | timestamp     | null              | null       |
//   | array_of_strings | list<string>  | (never)           | []         |
//   | category         | category      | (never)           | null       |
//   | int32 / int64    | int32 / int64 | null              | null       |
//   | float32 / float64| float32 / 64  | null              | null       |
//   | string           | string        | (never)           | null       |
//
// A value that is a valid number but does not fit the target width fails the
// whole column. The column keeps its previous values and a warning is
// recorded. Fractional values converted to an integer type are truncated.
//
// Text columns without a declaration are inferred: all values integral gives
// int64, all values numeric gives float64, anything else gets default_type.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// errOverflow marks a numeric value that does not fit the target type.
var errOverflow = errors.New("value out of range")

// dateLayouts are tried in order when a datetime column has no format.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06",
	"01-02-2006",
	"01-02-06",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

// =============================================================================
// COERCER
// =============================================================================

// CoercionOptions configures a Coercer.
type CoercionOptions struct {
	// Columns maps a column name to its declared type.
	Columns map[string]config.ColumnSpec

	// DefaultType is used for undeclared text columns that are not numeric.
	// Default: "string"
	DefaultType config.ColumnType

	// SerialDates enables reading datetime values stored as spreadsheet
	// serial numbers (days since 1899-12-30).
	SerialDates bool
}

// CoercionResult is the outcome of coercing a table.
type CoercionResult struct {
	// ListColumns names the columns now holding list<string> values, in
	// table order.
	ListColumns []string

	// Types records the type each converted column received.
	Types map[string]config.ColumnType

	// Warnings lists the columns and values that could not be converted.
	Warnings []types.Warning
}

// coerceFunc converts one column. The int result counts the values that could
// not be parsed and became null.
type coerceFunc func(col *types.Column, spec config.ColumnSpec) (*types.Column, int, error)

// Coercer applies column type declarations to tables.
type Coercer struct {
	opts  CoercionOptions
	funcs map[config.ColumnType]coerceFunc
}

// NewCoercer creates a Coercer.
func NewCoercer(opts CoercionOptions) *Coercer {
	if opts.DefaultType == "" {
		opts.DefaultType = config.TypeString
	}

	c := &Coercer{opts: opts}
	c.funcs = map[config.ColumnType]coerceFunc{
		config.TypeDatetime:       c.toTimestamp,
		config.TypeArrayOfStrings: toStringList,
		config.TypeCategory:       textAs(types.KindCategory),
		config.TypeString:         textAs(types.KindString),
		config.TypeInt32:          numberAs(types.KindInt32, parseInt32),
		config.TypeInt64:          numberAs(types.KindInt64, parseInt64),
		config.TypeFloat32:        numberAs(types.KindFloat32, parseFloat32),
		config.TypeFloat64:        numberAs(types.KindFloat64, parseFloat64),
	}
	return c
}

// Apply converts the columns of tbl in place.
//
// PROCESSING ORDER:
//   1. Declared columns present in the table get their declared type.
//   2. Undeclared text columns are inferred (int64, float64 or default_type).
//   3. Columns that are already typed are left as they are.
//
// A column that fails to convert keeps its values and adds a warning.
func (c *Coercer) Apply(tbl *types.Table) CoercionResult {
	result := CoercionResult{Types: make(map[string]config.ColumnType)}

	for i, col := range tbl.Columns {
		spec, declared := c.opts.Columns[col.Name]
		if !declared {
			if col.Kind != types.KindText {
				continue
			}
			spec = config.ColumnSpec{Type: c.inferType(col)}
		}

		fn, ok := c.funcs[spec.Type]
		if !ok {
			result.Warnings = append(result.Warnings, types.Warning{
				Stage:   "coerce",
				Column:  col.Name,
				Message: fmt.Sprintf("unknown type %q, column left unchanged", spec.Type),
			})
			continue
		}

		converted, invalid, err := fn(col, spec)
		if err != nil {
			result.Warnings = append(result.Warnings, types.Warning{
				Stage:   "coerce",
				Column:  col.Name,
				Message: fmt.Sprintf("could not convert to %s: %v", spec.Type, err),
			})
			continue
		}

		if invalid > 0 {
			result.Warnings = append(result.Warnings, types.Warning{
				Stage:   "coerce",
				Column:  col.Name,
				Message: fmt.Sprintf("%d value(s) could not be parsed as %s and were set to null", invalid, spec.Type),
			})
		}

		tbl.Replace(i, converted)
		result.Types[col.Name] = spec.Type
		if converted.Kind == types.KindStringList {
			result.ListColumns = append(result.ListColumns, col.Name)
		}
	}

	return result
}

// inferType picks the type of an undeclared text column.
func (c *Coercer) inferType(col *types.Column) config.ColumnType {
	allInt, allFloat, seen := true, true, false

	for _, v := range col.Values {
		s, ok := types.CellText(v)
		if !ok {
			continue
		}
		seen = true
		s = strings.TrimSpace(s)
		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if !allInt {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				allFloat = false
				break
			}
		}
	}

	switch {
	case !seen:
		return c.opts.DefaultType
	case allInt:
		return config.TypeInt64
	case allFloat:
		return config.TypeFloat64
	default:
		return c.opts.DefaultType
	}
}

// =============================================================================
// COERCION FUNCTIONS
// =============================================================================

// textAs returns a function that keeps the text of every value under a new
// kind.
func textAs(kind types.Kind) coerceFunc {
	return func(col *types.Column, _ config.ColumnSpec) (*types.Column, int, error) {
		values := make([]any, col.Len())
		for i, v := range col.Values {
			if s, ok := types.CellText(v); ok {
				values[i] = s
			}
		}
		return types.NewColumn(col.Name, kind, values), 0, nil
	}
}

// numberAs returns a function that parses every value with parse. parse
// returns ok=false for values that are not numbers and errOverflow for
// numbers that do not fit.
func numberAs(kind types.Kind, parse func(string) (any, bool, error)) coerceFunc {
	return func(col *types.Column, _ config.ColumnSpec) (*types.Column, int, error) {
		values := make([]any, col.Len())
		invalid := 0
		for i, v := range col.Values {
			s, ok := types.CellText(v)
			if !ok {
				continue
			}
			n, ok, err := parse(strings.TrimSpace(s))
			if err != nil {
				return nil, 0, fmt.Errorf("row %d value %q: %w", i, s, err)
			}
			if !ok {
				invalid++
				continue
			}
			values[i] = n
		}
		return types.NewColumn(col.Name, kind, values), invalid, nil
	}
}

// toStringList splits every value on the column delimiter and trims each
// element. Null values become empty lists.
func toStringList(col *types.Column, spec config.ColumnSpec) (*types.Column, int, error) {
	delimiter := spec.Delimiter
	if delimiter == "" {
		delimiter = ","
	}

	values := make([]any, col.Len())
	for i, v := range col.Values {
		if list, ok := v.([]string); ok {
			values[i] = list
			continue
		}
		s, ok := types.CellText(v)
		if !ok {
			values[i] = []string{}
			continue
		}
		parts := strings.Split(s, delimiter)
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		values[i] = parts
	}
	return types.NewColumn(col.Name, types.KindStringList, values), 0, nil
}

// toTimestamp parses every value as a point in time.
func (c *Coercer) toTimestamp(col *types.Column, spec config.ColumnSpec) (*types.Column, int, error) {
	values := make([]any, col.Len())
	invalid := 0
	for i, v := range col.Values {
		if t, ok := v.(time.Time); ok {
			values[i] = t
			continue
		}
		s, ok := types.CellText(v)
		if !ok {
			continue
		}
		t, ok := c.parseTime(strings.TrimSpace(s), spec.Format)
		if !ok {
			invalid++
			continue
		}
		values[i] = t
	}
	return types.NewColumn(col.Name, types.KindTimestamp, values), invalid, nil
}

// parseTime tries the explicit layout, then spreadsheet serials when enabled,
// then the common layouts.
func (c *Coercer) parseTime(s, layout string) (time.Time, bool) {
	if layout != "" {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if c.opts.SerialDates {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t, true
			}
			return time.Time{}, false
		}
	}

	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// =============================================================================
// NUMBER PARSERS
// =============================================================================

func parseInt32(s string) (any, bool, error) {
	n, ok, err := parseInteger(s, math.MinInt32, math.MaxInt32)
	if !ok || err != nil {
		return nil, ok, err
	}
	return int32(n), true, nil
}

func parseInt64(s string) (any, bool, error) {
	n, ok, err := parseInteger(s, math.MinInt64, math.MaxInt64)
	if !ok || err != nil {
		return nil, ok, err
	}
	return n, true, nil
}

// parseInteger accepts integers and decimal numbers. Decimal numbers are
// truncated toward zero.
func parseInteger(s string, lo, hi int64) (int64, bool, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		if n < lo || n > hi {
			return 0, false, errOverflow
		}
		return n, true, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, false, errOverflow
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false, nil
	}
	if math.IsNaN(f) {
		return 0, false, nil
	}
	f = math.Trunc(f)
	// float64(hi) rounds up for int64, so the upper bound is exclusive.
	if math.IsInf(f, 0) || f < float64(lo) || f >= float64(hi)+1 {
		return 0, false, errOverflow
	}
	return int64(f), true, nil
}

func parseFloat32(s string) (any, bool, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, false, errOverflow
		}
		return nil, false, nil
	}
	return float32(f), true, nil
}

func parseFloat64(s string) (any, bool, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, false, errOverflow
		}
		return nil, false, nil
	}
	return f, true, nil
}
