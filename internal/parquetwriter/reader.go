package parquetwriter

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// FileInfo summarizes a Parquet file without reading its data pages.
type FileInfo struct {
	Path         string
	Size         int64
	NumRows      int64
	NumRowGroups int
	CreatedBy    string
	Schema       *arrow.Schema

	// Codecs maps each leaf column path (e.g. "TAGS.list.element") to the
	// compression codec of its first row group.
	Codecs map[string]compress.Compression
}

// ReadFile reads a Parquet file back into a table.
func ReadFile(ctx context.Context, path string) (*types.Table, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer tbl.Release()

	return FromArrow(tbl)
}

// ReadSchema returns the Arrow schema stored in a Parquet file.
func ReadSchema(path string) (*arrow.Schema, error) {
	info, err := Inspect(path)
	if err != nil {
		return nil, err
	}
	return info.Schema, nil
}

// Inspect reads the footer of a Parquet file.
func Inspect(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	schema, err := fr.Schema()
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	meta := rdr.MetaData()
	info := &FileInfo{
		Path:         path,
		Size:         stat.Size(),
		NumRows:      rdr.NumRows(),
		NumRowGroups: rdr.NumRowGroups(),
		CreatedBy:    meta.GetCreatedBy(),
		Schema:       schema,
		Codecs:       make(map[string]compress.Compression),
	}

	if info.NumRowGroups > 0 {
		rg := meta.RowGroup(0)
		for i := 0; i < rg.NumColumns(); i++ {
			cc, err := rg.ColumnChunk(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read column chunk %d: %w", i, err)
			}
			info.Codecs[cc.PathInSchema().String()] = cc.Compression()
		}
	}

	return info, nil
}

// =============================================================================
// ARROW CONVERSION
// =============================================================================

// FromArrow converts an Arrow table into a table of typed columns.
func FromArrow(tbl arrow.Table) (*types.Table, error) {
	schema := tbl.Schema()
	columns := make([]*types.Column, 0, tbl.NumCols())

	for i := 0; i < int(tbl.NumCols()); i++ {
		field := schema.Field(i)
		kind, err := kindOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", field.Name, err)
		}

		values := make([]any, 0, tbl.NumRows())
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			values, err = appendChunk(values, chunk)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", field.Name, err)
			}
		}

		columns = append(columns, types.NewColumn(field.Name, kind, values))
	}

	return types.NewTable(columns...)
}

func kindOf(dt arrow.DataType) (types.Kind, error) {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return types.KindString, nil
	case arrow.DICTIONARY:
		return types.KindCategory, nil
	case arrow.INT32:
		return types.KindInt32, nil
	case arrow.INT64:
		return types.KindInt64, nil
	case arrow.FLOAT32:
		return types.KindFloat32, nil
	case arrow.FLOAT64:
		return types.KindFloat64, nil
	case arrow.TIMESTAMP:
		return types.KindTimestamp, nil
	case arrow.LIST:
		return types.KindStringList, nil
	}
	return 0, fmt.Errorf("unsupported arrow type %s", dt)
}

func appendChunk(values []any, chunk arrow.Array) ([]any, error) {
	for i := 0; i < chunk.Len(); i++ {
		if chunk.IsNull(i) {
			values = append(values, nil)
			continue
		}

		switch arr := chunk.(type) {
		case *array.String:
			values = append(values, arr.Value(i))
		case *array.LargeString:
			values = append(values, arr.Value(i))
		case *array.Dictionary:
			dict, ok := arr.Dictionary().(*array.String)
			if !ok {
				return nil, fmt.Errorf("dictionary values of type %s are not supported", arr.Dictionary().DataType())
			}
			values = append(values, dict.Value(arr.GetValueIndex(i)))
		case *array.Int32:
			values = append(values, arr.Value(i))
		case *array.Int64:
			values = append(values, arr.Value(i))
		case *array.Float32:
			values = append(values, arr.Value(i))
		case *array.Float64:
			values = append(values, arr.Value(i))
		case *array.Timestamp:
			unit := arr.DataType().(*arrow.TimestampType).Unit
			values = append(values, arr.Value(i).ToTime(unit))
		case *array.List:
			elems, ok := arr.ListValues().(*array.String)
			if !ok {
				return nil, fmt.Errorf("list elements of type %s are not supported", arr.ListValues().DataType())
			}
			start, end := arr.ValueOffsets(i)
			list := make([]string, 0, end-start)
			for j := start; j < end; j++ {
				list = append(list, elems.Value(int(j)))
			}
			values = append(values, list)
		default:
			return nil, fmt.Errorf("unsupported arrow array %T", chunk)
		}
	}
	return values, nil
}
