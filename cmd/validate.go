// =============================================================================
// Parquet Converter - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   parquet-converter validate [flags]
//
// Reads only the header row of every input file and reports what the csv
// command would do: the join key of every step, the output columns, and
// every finding. Exits with an error if any finding has error severity.
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/validation"
)

var (
	validateConfigPath string
	validateDataDir    string
	validateReport     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a model configuration against its input files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfigPath)
		if err != nil {
			return err
		}

		headers, err := validation.LoadHeaders(cfg, validateDataDir)
		if err != nil {
			return err
		}

		result := validation.ValidateModel(cfg, headers)
		out := cmd.OutOrStdout()

		for i, key := range result.JoinKeys {
			if key == "" {
				key = "(none)"
			}
			fmt.Fprintf(out, "Join %s on %s\n", cfg.FileNames[i+1], key)
		}
		if result.OutputColumns != nil {
			fmt.Fprintf(out, "Output columns: %s\n", strings.Join(result.OutputColumns, ", "))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, validation.FormatErrors(result.Errors))

		if validateReport != "" {
			if err := validation.WriteErrorLog(result.Errors, validateReport); err != nil {
				slog.Warn("could not write validation report", "path", validateReport, "error", err)
			}
		}

		if !result.IsValid {
			return fmt.Errorf("validation failed with %d error(s)", result.ErrorCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateConfigPath, "config", "data/config/model.json", "Path to the model configuration")
	validateCmd.Flags().StringVar(&validateDataDir, "data-dir", "data", "Directory containing the input files")
	validateCmd.Flags().StringVar(&validateReport, "report", "", "Write the findings to this file")
}
