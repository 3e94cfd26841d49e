// =============================================================================
// Parquet Converter - Inspect Command
// =============================================================================
//
// COMMAND USAGE:
//   parquet-converter inspect <file.parquet> [--rows N]
//
// Prints the footer of a Parquet file (rows, row groups, writer, codec of
// every column) and its Arrow schema, followed by the first N rows.
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/parquet-converter/internal/parquetwriter"
	"github.com/ginjaninja78/parquet-converter/pkg/utils"
)

var inspectRows int

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.parquet>",
	Short: "Show the schema, codecs and first rows of a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()

		info, err := parquetwriter.Inspect(path)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "File:       %s (%s MB)\n", info.Path, utils.FormatSizeMB(info.Size))
		fmt.Fprintf(out, "Rows:       %d\n", info.NumRows)
		fmt.Fprintf(out, "Row groups: %d\n", info.NumRowGroups)
		fmt.Fprintf(out, "Created by: %s\n\n", info.CreatedBy)

		fmt.Fprintln(out, "Schema:")
		for _, f := range info.Schema.Fields() {
			fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Type)
		}
		fmt.Fprintln(out)

		if len(info.Codecs) > 0 {
			paths := make([]string, 0, len(info.Codecs))
			for p := range info.Codecs {
				paths = append(paths, p)
			}
			sort.Strings(paths)

			fmt.Fprintln(out, "Compression:")
			for _, p := range paths {
				fmt.Fprintf(out, "  %s: %s\n", p, info.Codecs[p])
			}
			fmt.Fprintln(out)
		}

		if inspectRows <= 0 {
			return nil
		}
		tbl, err := parquetwriter.ReadFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Preview:")
		return printPreview(out, tbl, inspectRows)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVar(&inspectRows, "rows", previewRows, "Number of rows to print (0 to skip)")
}
