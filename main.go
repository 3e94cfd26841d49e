// =============================================================================
// Parquet Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   parquet-converter csv        - Join, rename and type CSV files into Parquet
//   parquet-converter xlsx       - Convert one worksheet into Parquet
//   parquet-converter validate   - Check a model configuration against its inputs
//   parquet-converter inspect    - Show the schema and codecs of a Parquet file
//   parquet-converter version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Readers, join, coercion, Parquet writer, validation
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/parquet-converter/cmd"
)

func main() {
	cmd.Execute()
}
