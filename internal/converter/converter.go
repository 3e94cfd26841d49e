// =============================================================================
// Parquet Converter - Converter Module
// =============================================================================
//
// This module contains the two conversion pipelines. Each pipeline runs once,
// sequentially, with the whole dataset in memory.
//
// CSV PIPELINE (Converter):
//   1. Resolve the input files against the data directory
//   2. Parse every CSV file
//   3. Merge the tables with the configured join
//   4. Rename columns (column_mapping)
//   5. Drop synthetic index columns ("Unnamed: ...")
//   6. Coerce column types; collect the list columns
//   7. Write the Parquet file with the list columns forced to list<string>
//
// SPREADSHEET PIPELINE (SpreadsheetConverter):
//   1. Parse one worksheet
//   2. Convert the date columns to timestamps (serial numbers allowed)
//   3. Write the Parquet file
//
// ERROR HANDLING:
//   A failing step stops the pipeline and is reported in Result.Error with
//   the failing step wrapped around the cause. Problems that only affect one
//   column or one rename are collected in Result.Warnings and logged; the run
//   continues.
//
// =============================================================================

package converter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/csvparser"
	"github.com/ginjaninja78/parquet-converter/internal/parquetwriter"
	"github.com/ginjaninja78/parquet-converter/internal/types"
	"github.com/ginjaninja78/parquet-converter/internal/xlsxparser"
	"github.com/ginjaninja78/parquet-converter/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a pipeline run.
type Result struct {
	// OutputFile is the path to the generated Parquet file.
	// This is empty if processing failed.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Warnings lists the recoverable problems of the run.
	Warnings []types.Warning

	// ListColumns names the columns written as list<string>.
	ListColumns []string

	// Table is the final table as written. It is nil if processing failed
	// before the table was complete.
	Table *types.Table

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// InputFiles are the resolved input paths in read order.
	InputFiles []string

	// RowsRead is the number of data rows read over all inputs.
	RowsRead int

	// JoinSteps records the key used for every joined file.
	JoinSteps []JoinStep

	// DroppedColumns lists the synthetic columns removed before writing.
	DroppedColumns []string

	// RowsWritten and ColumnsWritten describe the output file.
	RowsWritten    int
	ColumnsWritten int

	// OutputBytes is the size of the output file.
	OutputBytes int64

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// Summary converts the result into the form written by utils.WriteSummaryLog.
func (r Result) Summary(pipeline string, start time.Time) utils.RunSummary {
	summary := utils.RunSummary{
		Pipeline:       pipeline,
		StartTime:      start,
		EndTime:        start.Add(r.Stats.ProcessingTime),
		InputFiles:     r.Stats.InputFiles,
		OutputFile:     r.OutputFile,
		OutputBytes:    r.Stats.OutputBytes,
		RowsRead:       r.Stats.RowsRead,
		RowsWritten:    r.Stats.RowsWritten,
		ColumnsWritten: r.Stats.ColumnsWritten,
		ListColumns:    r.ListColumns,
		DroppedColumns: r.Stats.DroppedColumns,
	}
	for _, w := range r.Warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	if r.Error != nil {
		summary.Error = r.Error.Error()
	}
	return summary
}

// =============================================================================
// CSV PIPELINE
// =============================================================================

// Converter runs the CSV pipeline.
type Converter struct {
	// cfg is the model configuration. It is never modified.
	cfg *config.ModelConfig

	// dataDir is the directory the configured file names are relative to.
	dataDir string

	// output is the path of the Parquet file to write.
	output string

	logger *slog.Logger
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - cfg: The model configuration.
//   - dataDir: The directory containing the input files.
//   - output: The Parquet file to write.
//   - logger: Receives progress and warnings. nil uses slog.Default().
func New(cfg *config.ModelConfig, dataDir, output string, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		cfg:     cfg,
		dataDir: dataDir,
		output:  output,
		logger:  logger.With("pipeline", "csv"),
	}
}

// Run executes the CSV pipeline.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run() (result Result) {
	startTime := time.Now()
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	// =========================================================================
	// STEP 1: RESOLVE AND READ INPUT FILES
	// =========================================================================

	paths, err := utils.ResolveInputPaths(c.dataDir, c.cfg.FileNames)
	if err != nil {
		result.Error = fmt.Errorf("failed to resolve input files: %w", err)
		return result
	}
	result.Stats.InputFiles = paths

	tables := make([]*types.Table, len(paths))
	for i, path := range paths {
		tbl, err := csvparser.Parse(path, c.cfg.CSV)
		if err != nil {
			result.Error = fmt.Errorf("failed to parse %s: %w", path, err)
			return result
		}
		tables[i] = tbl
		result.Stats.RowsRead += tbl.NumRows()
		c.logger.Info("read input file", "file", path, "rows", tbl.NumRows(), "columns", tbl.NumColumns())
	}

	// =========================================================================
	// STEP 2: MERGE
	// =========================================================================

	merged, steps, err := Merge(tables, c.cfg.Join)
	if err != nil {
		result.Error = fmt.Errorf("failed to merge input files: %w", err)
		return result
	}
	result.Stats.JoinSteps = steps
	for _, step := range steps {
		c.logger.Info("joined file",
			"file", paths[step.FileIndex],
			"join", c.cfg.Join.Type,
			"key", step.Key,
			"rows", step.Rows)
		if c.cfg.Join.Column != "" && step.Key != c.cfg.Join.Column {
			c.warn(&result, types.Warning{
				Stage:   "join",
				Column:  c.cfg.Join.Column,
				Message: fmt.Sprintf("join column not present in both tables, joined file %d on %q instead", step.FileIndex, step.Key),
			})
		}
	}

	// =========================================================================
	// STEP 3: RENAME AND DROP SYNTHETIC COLUMNS
	// =========================================================================

	for _, w := range ApplyColumnMapping(merged, c.cfg.ColumnMapping) {
		c.warn(&result, w)
	}

	result.Stats.DroppedColumns = DropSyntheticColumns(merged)
	if len(result.Stats.DroppedColumns) > 0 {
		c.logger.Debug("dropped synthetic columns", "columns", result.Stats.DroppedColumns)
	}

	// =========================================================================
	// STEP 4: COERCE TYPES
	// =========================================================================

	coercer := NewCoercer(CoercionOptions{
		Columns:     c.cfg.Columns,
		DefaultType: c.cfg.DefaultType,
	})
	coerced := coercer.Apply(merged)
	for _, w := range coerced.Warnings {
		c.warn(&result, w)
	}
	result.ListColumns = coerced.ListColumns

	// =========================================================================
	// STEP 5: WRITE OUTPUT
	// =========================================================================

	write(&result, merged, c.output, c.logger)
	return result
}

func (c *Converter) warn(result *Result, w types.Warning) {
	result.Warnings = append(result.Warnings, w)
	logWarning(c.logger, w)
}

// =============================================================================
// SPREADSHEET PIPELINE
// =============================================================================

// SpreadsheetConverter runs the spreadsheet pipeline.
type SpreadsheetConverter struct {
	input       string
	output      string
	dateColumns []string
	sheet       string
	logger      *slog.Logger
}

// NewSpreadsheet creates a SpreadsheetConverter.
//
// PARAMETERS:
//   - input: The XLSX workbook.
//   - output: The Parquet file to write.
//   - dateColumns: Columns converted to timestamps.
//   - sheet: The worksheet to read; empty selects the first sheet.
//   - logger: Receives progress and warnings. nil uses slog.Default().
func NewSpreadsheet(input, output string, dateColumns []string, sheet string, logger *slog.Logger) *SpreadsheetConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadsheetConverter{
		input:       input,
		output:      output,
		dateColumns: dateColumns,
		sheet:       sheet,
		logger:      logger.With("pipeline", "xlsx"),
	}
}

// Run executes the spreadsheet pipeline.
func (s *SpreadsheetConverter) Run() (result Result) {
	startTime := time.Now()
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	result.Stats.InputFiles = []string{s.input}

	tbl, err := xlsxparser.Parse(s.input, xlsxparser.Options{Sheet: s.sheet})
	if err != nil {
		result.Error = fmt.Errorf("failed to parse %s: %w", s.input, err)
		return result
	}
	result.Stats.RowsRead = tbl.NumRows()
	s.logger.Info("read workbook", "file", s.input, "rows", tbl.NumRows(), "columns", tbl.NumColumns())

	columns := make(map[string]config.ColumnSpec, len(s.dateColumns))
	for _, name := range s.dateColumns {
		if !tbl.Has(name) {
			w := types.Warning{Stage: "coerce", Column: name, Message: "date column not found"}
			result.Warnings = append(result.Warnings, w)
			logWarning(s.logger, w)
			continue
		}
		columns[name] = config.ColumnSpec{Type: config.TypeDatetime}
	}

	coerced := NewCoercer(CoercionOptions{
		Columns:     columns,
		DefaultType: config.TypeString,
		SerialDates: true,
	}).Apply(tbl)
	for _, w := range coerced.Warnings {
		result.Warnings = append(result.Warnings, w)
		logWarning(s.logger, w)
	}
	result.ListColumns = coerced.ListColumns

	write(&result, tbl, s.output, s.logger)
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// write stores tbl at output and completes result.
func write(result *Result, tbl *types.Table, output string, logger *slog.Logger) {
	if err := parquetwriter.WriteFile(output, tbl, result.ListColumns); err != nil {
		result.Error = fmt.Errorf("failed to write %s: %w", output, err)
		return
	}

	size, err := utils.GetFileSize(output)
	if err != nil {
		result.Error = fmt.Errorf("failed to stat %s: %w", output, err)
		return
	}

	result.OutputFile = output
	result.Table = tbl
	result.Success = true
	result.Stats.RowsWritten = tbl.NumRows()
	result.Stats.ColumnsWritten = tbl.NumColumns()
	result.Stats.OutputBytes = size

	logger.Info("wrote parquet file",
		"file", output,
		"rows", tbl.NumRows(),
		"columns", tbl.NumColumns(),
		"list_columns", result.ListColumns,
		"size_mb", utils.FormatSizeMB(size))
}

func logWarning(logger *slog.Logger, w types.Warning) {
	logger.Warn(w.Message, "stage", w.Stage, "column", w.Column)
}
