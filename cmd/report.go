// =============================================================================
// Parquet Converter - Run Report
// =============================================================================
//
// Helpers shared by the pipeline commands to print what was written:
//   - Output path and size in MB
//   - The first rows of the final table
//   - Column kinds
//   - The Arrow type of every list column, read back from the written file
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ginjaninja78/parquet-converter/internal/converter"
	"github.com/ginjaninja78/parquet-converter/internal/parquetwriter"
	"github.com/ginjaninja78/parquet-converter/internal/types"
	"github.com/ginjaninja78/parquet-converter/pkg/utils"
)

// previewRows is the number of rows printed after a run.
const previewRows = 5

// printReport writes the human-readable report of a successful run.
func printReport(w io.Writer, result converter.Result) error {
	fmt.Fprintf(w, "Wrote %s (%s MB, %d rows, %d columns) in %s\n\n",
		result.OutputFile,
		utils.FormatSizeMB(result.Stats.OutputBytes),
		result.Stats.RowsWritten,
		result.Stats.ColumnsWritten,
		result.Stats.ProcessingTime.Round(time.Millisecond),
	)

	if result.Table != nil {
		fmt.Fprintln(w, "Preview:")
		if err := printPreview(w, result.Table, previewRows); err != nil {
			return err
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "Column types:")
		if err := printKinds(w, result.Table); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if len(result.ListColumns) > 0 {
		schema, err := parquetwriter.ReadSchema(result.OutputFile)
		if err != nil {
			return fmt.Errorf("failed to read back output schema: %w", err)
		}
		fmt.Fprintln(w, "List columns in output:")
		for _, name := range result.ListColumns {
			idx := schema.FieldIndices(name)
			if len(idx) == 0 {
				fmt.Fprintf(w, "  %s: missing from output\n", name)
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", name, schema.Field(idx[0]).Type)
		}
		fmt.Fprintln(w)
	}

	if n := len(result.Warnings); n > 0 {
		fmt.Fprintf(w, "%d warning(s) logged.\n", n)
	}
	return nil
}

// printPreview writes the first n rows of tbl as an aligned table.
func printPreview(w io.Writer, tbl *types.Table, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tbl.Names(), "\t"))

	if n > tbl.NumRows() {
		n = tbl.NumRows()
	}
	for i := 0; i < n; i++ {
		row := tbl.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = types.FormatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if rest := tbl.NumRows() - n; rest > 0 {
		fmt.Fprintf(tw, "... %d more row(s)\n", rest)
	}
	return tw.Flush()
}

// printKinds writes one line per column with its kind and null count.
func printKinds(w io.Writer, tbl *types.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, col := range tbl.Columns {
		fmt.Fprintf(tw, "  %s\t%s\t%d null\n", col.Name, col.Kind, col.NullCount())
	}
	return tw.Flush()
}

// writeSummary writes the run summary file when path is set.
func writeSummary(path, pipeline string, start time.Time, result converter.Result) error {
	if path == "" {
		return nil
	}
	return utils.WriteSummaryLog(result.Summary(pipeline, start), path)
}
