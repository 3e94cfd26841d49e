// =============================================================================
// Parquet Converter - XLSX Sheet Parser
// =============================================================================
//
// This module reads one worksheet of an XLSX workbook into an in-memory table.
//
// SHEET LAYOUT (Expected):
//   The first row holds the column headers, every following row is a record.
//
//   | Column A   | Column B  | Column C  |
//   |------------|-----------|-----------|
//   | PATIENT_ID | VISITDATE | SCORE     |
//   | P-001      | 45580     | 12.5      |
//   | P-002      | 45581     |           |
//
// Cell values are read raw, without number formats applied. Dates therefore
// arrive as Excel serial numbers ("45580") and are converted to timestamps by
// the coercion stage.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// Options selects what to read from the workbook.
type Options struct {
	// Sheet is the worksheet name.
	// Default: the first sheet of the workbook.
	Sheet string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a worksheet and returns its contents as a table of text columns.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - opts: Sheet selection.
//
// RETURNS:
//   - A table with one KindText column per header. Empty cells are nil.
//   - An error if the workbook cannot be opened or the sheet does not exist.
//
// Data cells to the right of the last header get "Unnamed: i" columns, and
// rows without any non-empty cell are skipped.
func Parse(path string, opts Options) (*types.Table, error) {
	rows, sheet, err := readRows(path, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	rawHeaders := make([]string, width)
	copy(rawHeaders, rows[0])
	headers := types.NormalizeHeaders(rawHeaders)

	columns := make([][]any, width)
	for i := range columns {
		columns[i] = []any{}
	}

	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		for col := 0; col < width; col++ {
			var value any
			if col < len(row) && row[col] != "" {
				value = row[col]
			}
			columns[col] = append(columns[col], value)
		}
	}

	cols := make([]*types.Column, width)
	for i, header := range headers {
		cols[i] = types.NewColumn(header, types.KindText, columns[i])
	}

	return types.NewTable(cols...)
}

// ReadHeaders returns the normalized header row of a worksheet.
func ReadHeaders(path string, opts Options) ([]string, error) {
	rows, sheet, err := readRows(path, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	return types.NormalizeHeaders(rows[0]), nil
}

// SheetNames lists the worksheets of a workbook in order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// readRows opens the workbook and returns the raw rows of the selected sheet
// together with the resolved sheet name.
func readRows(path string, opts Options) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, "", fmt.Errorf("workbook has no sheets")
		}
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, "", fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	// Leading empty rows do not hold the header.
	for len(rows) > 0 && isRowEmpty(rows[0]) {
		rows = rows[1:]
	}

	return rows, sheet, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
