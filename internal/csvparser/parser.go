// =============================================================================
// Parquet Converter - CSV Parser Module
// =============================================================================
//
// This module reads delimited text files into an in-memory table. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Different encodings (any WHATWG label, BOMs are stripped)
//   - Missing-value tokens ("", "NA", "NULL", ...)
//   - Empty and repeated headers
//
// Every cell is read as untyped text. Typing happens later in the coercion
// stage, so the reader never guesses.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// ErrEmptyFile is returned for files without a header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its contents as a table of text columns.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter, encoding and missing-value settings.
//
// RETURNS:
//   - A table with one KindText column per header.
//   - An error if the file cannot be opened, decoded or parsed.
//
// PARSING PROCESS:
//   1. Open the file and wrap it in a decoder for the configured encoding
//   2. Configure the CSV reader with the delimiter
//   3. Read and normalize the header row
//   4. Read data rows; missing-value tokens become nil, short rows are padded
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, settings)
}

// Read parses CSV data from r. See Parse.
func Read(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	csvReader, err := newReader(r, settings)
	if err != nil {
		return nil, err
	}

	rawHeaders, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	headers := types.NormalizeHeaders(rawHeaders)

	naSet := naValues(settings)
	columns := make([][]any, len(headers))

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if len(record) > len(headers) {
			line, _ := csvReader.FieldPos(0)
			return nil, fmt.Errorf("line %d has %d fields, header has %d", line, len(record), len(headers))
		}

		for col := range headers {
			if col >= len(record) {
				// Column is missing in this row.
				columns[col] = append(columns[col], nil)
				continue
			}
			value := record[col]
			if _, missing := naSet[value]; missing {
				columns[col] = append(columns[col], nil)
				continue
			}
			columns[col] = append(columns[col], value)
		}
	}

	cols := make([]*types.Column, len(headers))
	for i, header := range headers {
		values := columns[i]
		if values == nil {
			values = []any{}
		}
		cols[i] = types.NewColumn(header, types.KindText, values)
	}

	return types.NewTable(cols...)
}

// ReadHeaders returns the normalized header row of a CSV file without reading
// any data rows.
func ReadHeaders(filePath string, settings config.CSVSettings) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	csvReader, err := newReader(file, settings)
	if err != nil {
		return nil, err
	}

	rawHeaders, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	return types.NormalizeHeaders(rawHeaders), nil
}

// newReader builds a configured CSV reader on top of a decoding reader.
func newReader(r io.Reader, settings config.CSVSettings) (*csv.Reader, error) {
	decoded, err := decodingReader(bufio.NewReader(r), settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	if err := configureReader(csvReader, settings); err != nil {
		return nil, err
	}
	return csvReader, nil
}

// decodingReader converts the input to UTF-8.
//
// A byte order mark always wins over the configured label, so UTF-8 and
// UTF-16 files exported with a BOM are read correctly whatever the setting.
func decodingReader(r io.Reader, label string) (io.Reader, error) {
	if label == "" {
		label = "utf-8"
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}

	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	// Handle special names for common delimiters.
	switch strings.ToLower(settings.Delimiter) {
	case "\\t", "tab":
		reader.Comma = '\t'
	case "pipe":
		reader.Comma = '|'
	case "semicolon":
		reader.Comma = ';'
	case "":
		reader.Comma = ','
	default:
		runes := []rune(settings.Delimiter)
		if len(runes) != 1 {
			return fmt.Errorf("delimiter %q must be a single character", settings.Delimiter)
		}
		reader.Comma = runes[0]
	}

	// Row length is checked against the header by the caller.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	reader.ReuseRecord = true

	return nil
}

// naValues builds the set of cell values treated as missing.
func naValues(settings config.CSVSettings) map[string]struct{} {
	set := make(map[string]struct{}, len(config.DefaultNAValues)+len(settings.NAValues))
	for _, v := range config.DefaultNAValues {
		set[v] = struct{}{}
	}
	for _, v := range settings.NAValues {
		set[v] = struct{}{}
	}
	return set
}
