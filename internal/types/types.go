// =============================================================================
// Parquet Converter - Shared Types
// =============================================================================
//
// This package contains the in-memory table model shared by every stage of
// the conversion pipelines. Keeping it here avoids import cycles between:
//   - csvparser / xlsxparser (producers)
//   - converter (join, rename, coercion)
//   - parquetwriter (consumer)
//   - validation
//
// TABLE MODEL:
//   A Table is an ordered list of named columns. Every column holds one value
//   per row, so all columns of a table always have the same length. A nil
//   value is the null marker for every kind.
//
//   | Kind        | Go element type |
//   |-------------|-----------------|
//   | text        | string          |
//   | string      | string          |
//   | category    | string          |
//   | int32       | int32           |
//   | int64       | int64           |
//   | float32     | float32         |
//   | float64     | float64         |
//   | timestamp   | time.Time       |
//   | list        | []string        |
//
// =============================================================================

package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// COLUMN KINDS
// =============================================================================

// Kind is the semantic type of a column.
type Kind int

const (
	// KindText is untyped text exactly as read from the input file.
	KindText Kind = iota
	KindString
	KindCategory
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindTimestamp
	KindStringList
)

var kindNames = [...]string{
	KindText:       "text",
	KindString:     "string",
	KindCategory:   "category",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindFloat32:    "float32",
	KindFloat64:    "float64",
	KindTimestamp:  "timestamp",
	KindStringList: "list<string>",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsTextual reports whether values of this kind are stored as strings.
func (k Kind) IsTextual() bool {
	return k == KindText || k == KindString || k == KindCategory
}

// =============================================================================
// COLUMN
// =============================================================================

// Column is a named, typed sequence of values.
type Column struct {
	// Name is the column header.
	Name string

	// Kind determines the Go type of every non-nil entry in Values.
	Kind Kind

	// Values holds one entry per row. nil marks a missing value.
	Values []any
}

// NewColumn creates a column of the given kind.
func NewColumn(name string, kind Kind, values []any) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return len(c.Values)
}

// IsNull reports whether row i holds the null marker.
func (c *Column) IsNull(i int) bool {
	return c.Values[i] == nil
}

// NullCount returns the number of null values in the column.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered collection of equal-length columns.
type Table struct {
	Columns []*Column
}

// NewTable builds a table and checks that every column has the same length.
func NewTable(columns ...*Column) (*Table, error) {
	for _, col := range columns[min(1, len(columns)):] {
		if col.Len() != columns[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), columns[0].Len())
		}
	}
	return &Table{Columns: columns}, nil
}

// NumRows returns the number of rows. A table without columns has no rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Index returns the position of the first column with the given name, or -1.
func (t *Table) Index(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Column returns the first column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	if i := t.Index(name); i >= 0 {
		return t.Columns[i], true
	}
	return nil, false
}

// Rename renames the first column called oldName. It returns false when no
// such column exists.
func (t *Table) Rename(oldName, newName string) bool {
	i := t.Index(oldName)
	if i < 0 {
		return false
	}
	t.Columns[i].Name = newName
	return true
}

// Replace swaps the column at position i.
func (t *Table) Replace(i int, col *Column) {
	t.Columns[i] = col
}

// DropWhere removes every column whose name matches and returns the dropped
// names in their original order.
func (t *Table) DropWhere(match func(name string) bool) []string {
	var dropped []string
	kept := t.Columns[:0]
	for _, col := range t.Columns {
		if match(col.Name) {
			dropped = append(dropped, col.Name)
			continue
		}
		kept = append(kept, col)
	}
	t.Columns = kept
	return dropped
}

// Row returns the values of row i across all columns.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = col.Values[i]
	}
	return row
}

// =============================================================================
// WARNINGS
// =============================================================================

// Warning is a recoverable problem. The stage that produced it skipped the
// offending operation and the run continued.
type Warning struct {
	// Stage names the pipeline step, e.g. "rename" or "coerce".
	Stage string

	// Column is the affected column, if any.
	Column string

	// Message describes what was skipped.
	Message string
}

func (w Warning) String() string {
	if w.Column == "" {
		return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
	}
	return fmt.Sprintf("[%s] column %q: %s", w.Stage, w.Column, w.Message)
}

// =============================================================================
// VALUE FORMATTING
// =============================================================================

// CellText returns the textual form of a value. The second result is false
// for the null marker.
func CellText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	case []string:
		return strings.Join(x, ","), true
	default:
		return fmt.Sprint(x), true
	}
}

// FormatCell renders a value for human-readable previews.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "<null>"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	}
	s, _ := CellText(v)
	return s
}
