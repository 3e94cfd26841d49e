// =============================================================================
// Parquet Converter - Model Validation
// =============================================================================
//
// This module checks a model document against the header rows of its input
// files before any data is converted. It runs the structural steps of the CSV
// pipeline (join key resolution, column renames, synthetic column removal)
// on empty tables and reports everything that would fail or be skipped:
//   - Input files without a common join column (error)
//   - A configured join column that cannot be used (warning)
//   - Renames whose source column does not exist (warning)
//   - Column declarations that match no output column (warning)
//   - Options that have no effect for the declared type (warning)
//
// ERROR HANDLING:
//   - Findings are collected, not returned one at a time
//   - "error" findings mean the CSV pipeline would stop
//   - "warning" findings mean the pipeline would skip something and continue
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/converter"
	"github.com/ginjaninja78/parquet-converter/internal/csvparser"
	"github.com/ginjaninja78/parquet-converter/internal/types"
	"github.com/ginjaninja78/parquet-converter/pkg/utils"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// File is the input file the finding refers to, if any.
	File string

	// Field is the column the finding refers to, if any.
	Field string

	// Rule names the check that produced the finding.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var where []string
	if e.File != "" {
		where = append(where, "file '"+e.File+"'")
	}
	if e.Field != "" {
		where = append(where, "column '"+e.Field+"'")
	}
	prefix := fmt.Sprintf("[%s] %s", strings.ToUpper(e.Severity), e.Rule)
	if len(where) > 0 {
		prefix += " (" + strings.Join(where, ", ") + ")"
	}
	return prefix + ": " + e.Message
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no error findings.
	IsValid bool

	// Errors contains all findings, errors and warnings.
	Errors []*ValidationError

	// ErrorCount is the number of error findings.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// JoinKeys holds the key resolved for each joined file, in order.
	// An entry is empty when no key could be resolved.
	JoinKeys []string

	// OutputColumns are the column names the output file would have.
	OutputColumns []string
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// LoadHeaders reads the header row of every input file named in cfg.
//
// PARAMETERS:
//   - cfg: The model configuration.
//   - dataDir: The directory the file names are relative to.
//
// RETURNS:
//   - One header row per input file, in configuration order.
//   - An error if a file is missing or unreadable.
func LoadHeaders(cfg *config.ModelConfig, dataDir string) ([][]string, error) {
	paths, err := utils.ResolveInputPaths(dataDir, cfg.FileNames)
	if err != nil {
		return nil, err
	}

	headers := make([][]string, len(paths))
	for i, path := range paths {
		headers[i], err = csvparser.ReadHeaders(path, cfg.CSV)
		if err != nil {
			return nil, fmt.Errorf("failed to read headers of %s: %w", path, err)
		}
	}
	return headers, nil
}

// ValidateModel checks cfg against the header rows of its input files.
//
// PARAMETERS:
//   - cfg: The model configuration.
//   - headers: One header row per entry of cfg.FileNames.
//
// RETURNS:
//   - A ValidationResult with every finding.
//
// VALIDATION STEPS:
//   1. Resolve the join key for every file, as the pipeline would
//   2. Apply the column mapping to the joined header
//   3. Remove synthetic columns
//   4. Check every column declaration against the remaining columns
func ValidateModel(cfg *config.ModelConfig, headers [][]string) *ValidationResult {
	result := &ValidationResult{}

	if len(headers) != len(cfg.FileNames) {
		result.add(&ValidationError{
			Severity: SeverityError,
			Rule:     "input_files",
			Message:  fmt.Sprintf("got headers for %d file(s), config lists %d", len(headers), len(cfg.FileNames)),
		})
		result.IsValid = false
		return result
	}

	merged := validateJoins(cfg, headers, result)
	if merged == nil {
		result.IsValid = result.ErrorCount == 0
		return result
	}

	for _, w := range converter.ApplyColumnMapping(merged, cfg.ColumnMapping) {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    w.Column,
			Rule:     "column_mapping",
			Message:  w.Message,
		})
	}

	converter.DropSyntheticColumns(merged)
	result.OutputColumns = merged.Names()

	validateColumns(cfg, merged, result)

	result.IsValid = result.ErrorCount == 0
	return result
}

// validateJoins folds the header rows the way the pipeline folds the tables.
// It returns the joined empty table, or nil if a key could not be resolved.
func validateJoins(cfg *config.ModelConfig, headers [][]string, result *ValidationResult) *types.Table {
	merged := emptyTable(headers[0])
	failed := false

	how := cfg.Join.Type
	if how == "" {
		how = config.JoinLeft
	}

	for i := 1; i < len(headers); i++ {
		next := emptyTable(headers[i])

		key, err := converter.ResolveJoinKey(merged, next, cfg.Join.Column)
		result.JoinKeys = append(result.JoinKeys, key)
		if err != nil {
			result.add(&ValidationError{
				Severity: SeverityError,
				File:     cfg.FileNames[i],
				Rule:     "join_key",
				Message:  err.Error(),
			})
			failed = true
			continue
		}

		if cfg.Join.Column != "" && key != cfg.Join.Column {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				File:     cfg.FileNames[i],
				Field:    cfg.Join.Column,
				Rule:     "join_column",
				Message:  fmt.Sprintf("join column not present in both tables, %q would be used instead", key),
			})
		}

		if failed {
			continue
		}
		merged, err = converter.Join(merged, next, key, how, fmt.Sprint(i))
		if err != nil {
			result.add(&ValidationError{
				Severity: SeverityError,
				File:     cfg.FileNames[i],
				Rule:     "join",
				Message:  err.Error(),
			})
			failed = true
		}
	}

	if failed {
		return nil
	}
	return merged
}

// validateColumns checks the column declarations in sorted order.
func validateColumns(cfg *config.ModelConfig, merged *types.Table, result *ValidationResult) {
	names := make([]string, 0, len(cfg.Columns))
	for name := range cfg.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := cfg.Columns[name]

		if !merged.Has(name) {
			msg := "declared column does not exist in the output and will be skipped"
			if renamed, ok := cfg.ColumnMapping[name]; ok {
				msg = fmt.Sprintf("declared under its source name, the column is renamed to %q", renamed)
			}
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    name,
				Rule:     "column_missing",
				Message:  msg,
			})
		}

		if spec.Delimiter != "" && spec.Type != config.TypeArrayOfStrings {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    name,
				Rule:     "option_ignored",
				Message:  fmt.Sprintf("delimiter has no effect for type %s", spec.Type),
			})
		}

		if spec.Format != "" {
			if spec.Type != config.TypeDatetime {
				result.add(&ValidationError{
					Severity: SeverityWarning,
					Field:    name,
					Rule:     "option_ignored",
					Message:  fmt.Sprintf("format has no effect for type %s", spec.Type),
				})
			} else if !isTimeLayout(spec.Format) {
				result.add(&ValidationError{
					Severity: SeverityWarning,
					Field:    name,
					Rule:     "datetime_format",
					Message:  fmt.Sprintf("format %q contains no Go reference time component (e.g. 2006, 01, 02)", spec.Format),
				})
			}
		}
	}
}

// isTimeLayout reports whether layout has at least one date or time element.
// A layout without any formats every time as itself.
func isTimeLayout(layout string) bool {
	probe := time.Date(2001, 3, 4, 5, 6, 7, 0, time.UTC)
	return probe.Format(layout) != layout
}

func emptyTable(header []string) *types.Table {
	cols := make([]*types.Column, len(header))
	for i, name := range header {
		cols[i] = types.NewColumn(name, types.KindText, []any{})
	}
	tbl, _ := types.NewTable(cols...)
	return tbl
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatErrors formats validation findings for display or logging.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation findings to a file.
//
// PARAMETERS:
//   - errors: The findings to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	if err := utils.EnsureParentDir(filePath); err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create validation log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation run at %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	writer.WriteString(FormatErrors(errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write validation log: %w", err)
	}
	return nil
}
