// =============================================================================
// Parquet Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every pipeline and
// tool command is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (parquet-converter)
//   ├── csvCmd      (parquet-converter csv)
//   ├── xlsxCmd     (parquet-converter xlsx)
//   ├── validateCmd (parquet-converter validate)
//   ├── inspectCmd  (parquet-converter inspect <file.parquet>)
//   └── versionCmd  (parquet-converter version)
//
// The root command sets up logging for all subcommands. Log records go to
// stderr; reports go to stdout.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/parquet-converter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// verbose forces the debug log level.
var verbose bool

// logLevel is one of debug, info, warn, error.
var logLevel string

// logFormat is text or json.
var logFormat string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "parquet-converter",
	Short: "Convert CSV and XLSX exports to Snappy-compressed Parquet",
	Long: `Parquet Converter turns tabular exports into a single Parquet file.

Two pipelines are available:
  - csv:  read the CSV files named in a model configuration, join them on a
          shared column, rename and type the columns, and write one file
  - xlsx: read one worksheet, parse the date columns, and write one file

Example Usage:
  parquet-converter csv                                  # Use data/config/model.json
  parquet-converter csv --config ./model.yaml --output out/{date}.parquet
  parquet-converter xlsx --input export.xlsx --date-columns VISITDATE,DOB
  parquet-converter validate                             # Check the model without converting
  parquet-converter inspect public/lv_export.parquet`,

	// Errors are reported once by Execute; usage is noise after a data error.
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logLevel
		if verbose {
			level = "debug"
		}
		logging.Setup(level, logFormat, os.Stderr)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging (same as --log-level debug)",
	)

	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"info",
		"Log level: debug, info, warn, error",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"text",
		"Log format: text or json",
	)
}
