// =============================================================================
// Parquet Converter - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   parquet-converter version
//
// OUTPUT:
//   Parquet Converter
//   Version:       1.0.0
//   Build Date:    unknown
//   Go Version:    go1.24.11
//   Parquet Codec: snappy
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X 'github.com/ginjaninja78/parquet-converter/cmd.Version=1.1.0'"
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Parquet Converter")
		fmt.Fprintf(out, "Version:       %s\n", Version)
		fmt.Fprintf(out, "Build Date:    %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version:    %s\n", runtime.Version())
		fmt.Fprintf(out, "Parquet Codec: snappy\n")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
