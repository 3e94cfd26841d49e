// =============================================================================
// Parquet Converter - CSV Command
// =============================================================================
//
// COMMAND USAGE:
//   parquet-converter csv [flags]
//
// FLAGS:
//   --config        : Model configuration (JSON or YAML)
//   --data-dir      : Directory the configured file names are relative to
//   --output        : Output file; {date}, {timestamp}, {time}, {uuid} and
//                     {original} (the config file name) are expanded
//   --summary-file  : Optional text summary of the run
//
// PROCESSING PIPELINE:
//   1. Load the model configuration
//   2. Read every input file as text
//   3. Join the files from left to right
//   4. Rename columns and drop "Unnamed" columns
//   5. Coerce column types
//   6. Write one Snappy-compressed Parquet file
//   7. Print the report
//
// =============================================================================

package cmd

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/converter"
	"github.com/ginjaninja78/parquet-converter/pkg/utils"
)

var (
	csvConfigPath  string
	csvDataDir     string
	csvOutput      string
	csvSummaryFile string
)

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Join, rename and type CSV files into one Parquet file",
	Long: `The csv command reads the files listed in the model configuration,
joins them on a shared column, applies the column mapping, coerces the
declared column types and writes the result as one Parquet file.

Missing rename sources, unknown declared columns and unparseable values are
logged as warnings. Missing input files, files without a common column and
write failures stop the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCSV(cmd)
	},
}

func init() {
	rootCmd.AddCommand(csvCmd)

	csvCmd.Flags().StringVar(&csvConfigPath, "config", "data/config/model.json", "Path to the model configuration")
	csvCmd.Flags().StringVar(&csvDataDir, "data-dir", "data", "Directory containing the input files")
	csvCmd.Flags().StringVar(&csvOutput, "output", "public/lv_export.parquet", "Output Parquet file")
	csvCmd.Flags().StringVar(&csvSummaryFile, "summary-file", "", "Write a run summary to this file")
}

func runCSV(cmd *cobra.Command) error {
	start := time.Now()

	cfg, err := config.Load(csvConfigPath)
	if err != nil {
		return err
	}

	output := expandOutput(csvOutput, csvConfigPath)
	slog.Info("starting csv pipeline",
		"config", csvConfigPath,
		"data_dir", csvDataDir,
		"files", len(cfg.FileNames),
		"output", output,
	)

	result := converter.New(cfg, csvDataDir, output, slog.Default()).Run()

	if err := writeSummary(csvSummaryFile, "csv", start, result); err != nil {
		slog.Warn("could not write run summary", "path", csvSummaryFile, "error", err)
	}
	if !result.Success {
		return result.Error
	}
	return printReport(cmd.OutOrStdout(), result)
}

// expandOutput fills in output name placeholders. Paths without a
// placeholder are used unchanged.
func expandOutput(output, source string) string {
	if !strings.Contains(output, "{") {
		return output
	}
	return utils.GenerateOutputFileName(output, map[string]string{
		"original": utils.BaseName(source),
	})
}
