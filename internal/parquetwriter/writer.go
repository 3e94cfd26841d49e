// =============================================================================
// Parquet Converter - Parquet Writer Module
// =============================================================================
//
// This module turns an in-memory table into a Parquet file. Columns are
// mapped to Arrow types and written through pqarrow with Snappy compression.
//
// TYPE MAPPING:
//   | Column kind     | Arrow type                          |
//   |-----------------|-------------------------------------|
//   | text, string    | utf8                                |
//   | category        | dictionary<values=utf8, indices=i32>|
//   | int32, int64    | int32, int64                        |
//   | float32/float64 | float, double                       |
//   | timestamp       | timestamp[us]                       |
//   | list<string>    | list<utf8>                          |
//
// LIST COLUMNS:
//   The element type of a list column is inferred from its values. When every
//   list is empty there is nothing to infer from, so the inferred type is
//   list<null>. Columns produced by array_of_strings coercion are therefore
//   passed explicitly and their type is overridden with list<utf8> before any
//   data is written. A list<null> column that is not overridden is an error.
//
// =============================================================================

package parquetwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// ErrAmbiguousListType is returned for a list column whose element type
// cannot be inferred and was not declared.
var ErrAmbiguousListType = errors.New("ambiguous list type")

// StringList is the Arrow type written for list columns.
var StringList = arrow.ListOf(arrow.BinaryTypes.String)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// WriteOptions contains options for Parquet generation.
type WriteOptions struct {
	// RowGroupLength is the maximum number of rows per row group.
	// Default: parquet.DefaultMaxRowGroupLen
	RowGroupLength int64

	// CreatedBy is stored in the file footer.
	// Default: "parquet-converter"
	CreatedBy string

	// Allocator is used for Arrow buffers.
	// Default: memory.DefaultAllocator
	Allocator memory.Allocator
}

// DefaultWriteOptions returns the default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		RowGroupLength: parquet.DefaultMaxRowGroupLen,
		CreatedBy:      "parquet-converter",
		Allocator:      memory.DefaultAllocator,
	}
}

// =============================================================================
// SCHEMA
// =============================================================================

// InferSchema derives the Arrow schema of a table from its column kinds.
// Every field is nullable.
func InferSchema(tbl *types.Table) *arrow.Schema {
	fields := make([]arrow.Field, tbl.NumColumns())
	for i, col := range tbl.Columns {
		fields[i] = arrow.Field{Name: col.Name, Type: inferType(col), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func inferType(col *types.Column) arrow.DataType {
	switch col.Kind {
	case types.KindCategory:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	case types.KindInt32:
		return arrow.PrimitiveTypes.Int32
	case types.KindInt64:
		return arrow.PrimitiveTypes.Int64
	case types.KindFloat32:
		return arrow.PrimitiveTypes.Float32
	case types.KindFloat64:
		return arrow.PrimitiveTypes.Float64
	case types.KindTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond}
	case types.KindStringList:
		for _, v := range col.Values {
			if list, ok := v.([]string); ok && len(list) > 0 {
				return StringList
			}
		}
		return arrow.ListOf(arrow.Null)
	default:
		return arrow.BinaryTypes.String
	}
}

// OverrideListFields returns a copy of schema where every field named in
// listColumns has type list<utf8>.
//
// RETURNS:
//   - The new schema.
//   - An error if a listed column is not in the schema.
func OverrideListFields(schema *arrow.Schema, listColumns []string) (*arrow.Schema, error) {
	override := make(map[string]bool, len(listColumns))
	for _, name := range listColumns {
		if len(schema.FieldIndices(name)) == 0 {
			return nil, fmt.Errorf("list column %q is not in the schema", name)
		}
		override[name] = true
	}

	fields := schema.Fields()
	for i := range fields {
		if override[fields[i].Name] {
			fields[i].Type = StringList
		}
	}

	md := schema.Metadata()
	return arrow.NewSchema(fields, &md), nil
}

// =============================================================================
// WRITE FUNCTIONS
// =============================================================================

// Write encodes tbl as a Snappy-compressed Parquet file.
//
// PARAMETERS:
//   - w: The destination.
//   - tbl: The table to write.
//   - listColumns: Columns whose type is forced to list<utf8>.
//
// RETURNS:
//   - An error if the schema is ambiguous, a value does not match its column
//     kind or the encoder fails.
func Write(w io.Writer, tbl *types.Table, listColumns []string) error {
	return WriteWithOptions(w, tbl, listColumns, DefaultWriteOptions())
}

// WriteWithOptions is Write with custom options.
//
// WRITE PROCESS:
//   1. Infer the schema and override the list fields
//   2. Build one Arrow array per column under the final schema
//   3. Assemble a single record and write it with pqarrow
func WriteWithOptions(w io.Writer, tbl *types.Table, listColumns []string, opts WriteOptions) error {
	if opts.Allocator == nil {
		opts.Allocator = memory.DefaultAllocator
	}
	if opts.RowGroupLength <= 0 {
		opts.RowGroupLength = parquet.DefaultMaxRowGroupLen
	}

	schema, err := OverrideListFields(InferSchema(tbl), listColumns)
	if err != nil {
		return err
	}

	for _, field := range schema.Fields() {
		if list, ok := field.Type.(*arrow.ListType); ok && list.Elem().ID() == arrow.NULL {
			return fmt.Errorf("column %q: %w", field.Name, ErrAmbiguousListType)
		}
	}

	arrays := make([]arrow.Array, tbl.NumColumns())
	defer func() {
		for _, arr := range arrays {
			if arr != nil {
				arr.Release()
			}
		}
	}()

	for i, col := range tbl.Columns {
		arr, err := buildArray(opts.Allocator, schema.Field(i).Type, col)
		if err != nil {
			return fmt.Errorf("column %q: %w", col.Name, err)
		}
		arrays[i] = arr
	}

	record := array.NewRecord(schema, arrays, int64(tbl.NumRows()))
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithCreatedBy(opts.CreatedBy),
		parquet.WithAllocator(opts.Allocator),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	if err := pqarrow.WriteTable(table, w, opts.RowGroupLength, props, arrowProps); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// WriteFile writes tbl to path, creating parent directories as needed. A
// partially written file is removed on error.
func WriteFile(path string, tbl *types.Table, listColumns []string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Write(f, tbl, listColumns); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}

	// The parquet writer already closed f.
	f.Close()
	return nil
}

// =============================================================================
// ARRAY BUILDING
// =============================================================================

// buildArray converts the values of col into an Arrow array of type dt.
func buildArray(mem memory.Allocator, dt arrow.DataType, col *types.Column) (arrow.Array, error) {
	bldr := array.NewBuilder(mem, dt)
	defer bldr.Release()

	for i, v := range col.Values {
		if v == nil {
			bldr.AppendNull()
			continue
		}
		if err := appendValue(bldr, v); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	return bldr.NewArray(), nil
}

func appendValue(bldr array.Builder, v any) error {
	switch b := bldr.(type) {
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			return mismatch(v, "string")
		}
		b.Append(s)

	case *array.BinaryDictionaryBuilder:
		s, ok := v.(string)
		if !ok {
			return mismatch(v, "string")
		}
		return b.AppendString(s)

	case *array.Int32Builder:
		n, ok := v.(int32)
		if !ok {
			return mismatch(v, "int32")
		}
		b.Append(n)

	case *array.Int64Builder:
		n, ok := v.(int64)
		if !ok {
			return mismatch(v, "int64")
		}
		b.Append(n)

	case *array.Float32Builder:
		f, ok := v.(float32)
		if !ok {
			return mismatch(v, "float32")
		}
		b.Append(f)

	case *array.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return mismatch(v, "float64")
		}
		b.Append(f)

	case *array.TimestampBuilder:
		t, ok := v.(time.Time)
		if !ok {
			return mismatch(v, "time.Time")
		}
		b.Append(arrow.Timestamp(t.UnixMicro()))

	case *array.ListBuilder:
		list, ok := v.([]string)
		if !ok {
			return mismatch(v, "[]string")
		}
		values, ok := b.ValueBuilder().(*array.StringBuilder)
		if !ok {
			return fmt.Errorf("list element type %s is not utf8", b.Type())
		}
		b.Append(true)
		for _, s := range list {
			values.Append(s)
		}

	default:
		return fmt.Errorf("unsupported arrow type %s", bldr.Type())
	}
	return nil
}

func mismatch(v any, want string) error {
	return fmt.Errorf("value %v has type %T, expected %s", v, v, want)
}
