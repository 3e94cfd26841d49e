// =============================================================================
// Parquet Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Input path resolution against the data directory
//   - Output directory creation and file naming
//   - File size reporting
//   - Run summary files
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// INPUT RESOLUTION
// =============================================================================

// ResolveInputPaths joins every file name with the data directory and checks
// that the result exists.
//
// PARAMETERS:
//   - dataDir: The directory the names are relative to. Absolute names are
//     used unchanged.
//   - names: The file names in input order.
//
// RETURNS:
//   - The resolved paths, in the same order.
//   - An error naming every missing file.
func ResolveInputPaths(dataDir string, names []string) ([]string, error) {
	paths := make([]string, len(names))
	var missing []string

	for i, name := range names {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, name)
		}
		paths[i] = path

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("input file(s) not found: %s", strings.Join(missing, ", "))
	}
	return paths, nil
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureParentDir creates the directory that will contain path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name pattern.
//
// PARAMETERS:
//   - format: The pattern for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {original}  - Passed in params, e.g. the input file name
//                             without extension
//   - params: Additional placeholder values.
//
// RETURNS:
//   - The expanded name, always ending in ".parquet".
//
// EXAMPLE:
//   format: "{original}_{date}"
//   params: {"original": "lv_export"}
//   output: "lv_export_20251017.parquet"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".parquet") {
		result += ".parquet"
	}

	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a conversion run.
type RunSummary struct {
	Pipeline       string
	StartTime      time.Time
	EndTime        time.Time
	InputFiles     []string
	OutputFile     string
	OutputBytes    int64
	RowsRead       int
	RowsWritten    int
	ColumnsWritten int
	ListColumns    []string
	DroppedColumns []string
	Warnings       []string
	Error          string
}

// WriteSummaryLog writes a run summary to a text file.
//
// PARAMETERS:
//   - summary: The run summary.
//   - path: The summary file to create.
//
// RETURNS:
//   - An error if the file cannot be written.
func WriteSummaryLog(summary RunSummary, path string) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80)

	status := "SUCCESS"
	if summary.Error != "" {
		status = "FAILED"
	}

	fmt.Fprintf(w, "Parquet Converter - Run Summary (%s)\n%s\n\n", summary.Pipeline, rule)
	fmt.Fprintf(w, "Run Information:\n")
	fmt.Fprintf(w, "  Status:     %s\n", status)
	fmt.Fprintf(w, "  Start Time: %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  End Time:   %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:   %s\n\n", summary.EndTime.Sub(summary.StartTime))

	fmt.Fprintf(w, "Files:\n")
	for _, in := range summary.InputFiles {
		fmt.Fprintf(w, "  Input:  %s\n", in)
	}
	if summary.OutputFile != "" {
		fmt.Fprintf(w, "  Output: %s (%s MB)\n", summary.OutputFile, FormatSizeMB(summary.OutputBytes))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Statistics:\n")
	fmt.Fprintf(w, "  Rows Read:       %d\n", summary.RowsRead)
	fmt.Fprintf(w, "  Rows Written:    %d\n", summary.RowsWritten)
	fmt.Fprintf(w, "  Columns Written: %d\n", summary.ColumnsWritten)
	fmt.Fprintf(w, "  List Columns:    %s\n", joinOrNone(summary.ListColumns))
	fmt.Fprintf(w, "  Dropped Columns: %s\n\n", joinOrNone(summary.DroppedColumns))

	if len(summary.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings:\n%s\n", strings.Repeat("-", 80))
		for _, warning := range summary.Warnings {
			fmt.Fprintf(w, "  %s\n", warning)
		}
		fmt.Fprintln(w)
	}

	if summary.Error != "" {
		fmt.Fprintf(w, "Error:\n  %s\n\n", summary.Error)
	}

	fmt.Fprintf(w, "%s\nEnd of Summary\n", rule)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush summary file: %w", err)
	}
	return nil
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// FormatSizeMB renders a byte count in megabytes with two decimals.
func FormatSizeMB(size int64) string {
	return fmt.Sprintf("%.2f", float64(size)/(1024*1024))
}
