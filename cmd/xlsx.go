// =============================================================================
// Parquet Converter - XLSX Command
// =============================================================================
//
// COMMAND USAGE:
//   parquet-converter xlsx [flags]
//
// FLAGS:
//   --input         : Workbook to convert
//   --sheet         : Worksheet name (default: first sheet)
//   --date-columns  : Comma-separated columns parsed as datetimes
//   --output        : Output file, placeholders as for the csv command
//   --summary-file  : Optional text summary of the run
//
// Date cells may hold Excel serial numbers or date text. Other columns are
// inferred as int64, float64 or string.
//
// =============================================================================

package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/parquet-converter/internal/converter"
)

var (
	xlsxInput       string
	xlsxSheet       string
	xlsxDateColumns []string
	xlsxOutput      string
	xlsxSummaryFile string
)

var xlsxCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Convert one worksheet into a Parquet file",
	Long: `The xlsx command reads one worksheet, parses the date columns and writes
the sheet as one Parquet file. Date columns that are missing from the sheet
are logged as warnings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		output := expandOutput(xlsxOutput, xlsxInput)

		slog.Info("starting xlsx pipeline",
			"input", xlsxInput,
			"sheet", xlsxSheet,
			"date_columns", xlsxDateColumns,
			"output", output,
		)

		result := converter.NewSpreadsheet(xlsxInput, output, xlsxDateColumns, xlsxSheet, slog.Default()).Run()

		if err := writeSummary(xlsxSummaryFile, "xlsx", start, result); err != nil {
			slog.Warn("could not write run summary", "path", xlsxSummaryFile, "error", err)
		}
		if !result.Success {
			return result.Error
		}
		return printReport(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(xlsxCmd)

	xlsxCmd.Flags().StringVar(&xlsxInput, "input", "data/LV export_101725.xlsx", "Workbook to convert")
	xlsxCmd.Flags().StringVar(&xlsxSheet, "sheet", "", "Worksheet name (default: first sheet)")
	xlsxCmd.Flags().StringSliceVar(&xlsxDateColumns, "date-columns", []string{"VISITDATE"}, "Columns to parse as datetimes")
	xlsxCmd.Flags().StringVar(&xlsxOutput, "output", "public/lv_export.parquet", "Output Parquet file")
	xlsxCmd.Flags().StringVar(&xlsxSummaryFile, "summary-file", "", "Write a run summary to this file")
}
