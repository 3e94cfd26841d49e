// =============================================================================
// Parquet Converter - Configuration Module
// =============================================================================
//
// This module loads the model configuration that drives the CSV pipeline.
// The model document describes:
//   - Which input files to read and how to join them
//   - How to rename columns
//   - Which semantic type each output column should have
//
// CONFIGURATION FILE:
//   The document is JSON (data/config/model.json by default). Files ending
//   in .yaml or .yml are read as YAML with the same keys.
//
//   {
//     "file_names": ["samples.csv", "visits.csv"],
//     "column_mapping": {"Sample ID": "sample_id"},
//     "join": {"type": "left", "column": "sample_id"},
//     "columns": {
//       "VISITDATE": {"type": "datetime"},
//       "TAGS":      {"type": "array_of_strings", "delimiter": ";"}
//     },
//     "default_type": "string"
//   }
//
// The configuration is read once and never modified during a run.
//
// =============================================================================

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// COLUMN TYPES
// =============================================================================

// ColumnType is the target semantic type of an output column.
type ColumnType string

const (
	TypeDatetime       ColumnType = "datetime"
	TypeArrayOfStrings ColumnType = "array_of_strings"
	TypeCategory       ColumnType = "category"
	TypeInt32          ColumnType = "int32"
	TypeInt64          ColumnType = "int64"
	TypeFloat32        ColumnType = "float32"
	TypeFloat64        ColumnType = "float64"
	TypeString         ColumnType = "string"
)

// ColumnTypes lists every supported column type.
var ColumnTypes = []ColumnType{
	TypeDatetime,
	TypeArrayOfStrings,
	TypeCategory,
	TypeInt32,
	TypeInt64,
	TypeFloat32,
	TypeFloat64,
	TypeString,
}

// Valid reports whether t is one of the supported column types.
func (t ColumnType) Valid() bool {
	for _, known := range ColumnTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsScalar reports whether t produces one value per cell. Only scalar types
// may be used as the default type.
func (t ColumnType) IsScalar() bool {
	return t.Valid() && t != TypeArrayOfStrings
}

// =============================================================================
// JOIN TYPES
// =============================================================================

// JoinType is the relational semantics used when merging input files.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinOuter JoinType = "outer"
)

// Valid reports whether j is a supported join type.
func (j JoinType) Valid() bool {
	switch j {
	case JoinInner, JoinLeft, JoinRight, JoinOuter:
		return true
	}
	return false
}

// =============================================================================
// MODEL CONFIGURATION STRUCTURE
// =============================================================================

// ModelConfig holds the model document.
type ModelConfig struct {
	// FileNames lists the input CSV files in join order.
	// Paths are relative to the data directory.
	FileNames []string `json:"file_names" yaml:"file_names"`

	// ColumnMapping renames columns (old name -> new name).
	// Entries whose old name is not present only produce a warning.
	ColumnMapping map[string]string `json:"column_mapping" yaml:"column_mapping"`

	// Join controls how multiple input files are merged.
	Join JoinConfig `json:"join" yaml:"join"`

	// Columns maps an output column name to its target type.
	Columns map[string]ColumnSpec `json:"columns" yaml:"columns"`

	// DefaultType is applied to every untyped text column that is not listed
	// in Columns.
	// Default: "string"
	DefaultType ColumnType `json:"default_type" yaml:"default_type"`

	// CSV contains settings for reading the input files.
	CSV CSVSettings `json:"csv" yaml:"csv"`
}

// JoinConfig describes how input files are merged.
type JoinConfig struct {
	// Type is one of "inner", "left", "right", "outer".
	// Default: "left" (every row of the first file is kept)
	Type JoinType `json:"type" yaml:"type"`

	// Column is the preferred join key. When it is missing from either side,
	// the first column common to both tables is used instead.
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
}

// ColumnSpec is the type declaration for a single column.
type ColumnSpec struct {
	// Type is the target semantic type.
	Type ColumnType `json:"type" yaml:"type"`

	// Delimiter splits array_of_strings values.
	// Default: ","
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// Format is an optional Go time layout for datetime columns, e.g.
	// "02.01.2006". Without it a list of common layouts is tried.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Accepts a single character or one of "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// Encoding is a WHATWG encoding label such as "utf-8", "latin1",
	// "windows-1252" or "utf-16le".
	// Default: "utf-8"
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty"`

	// NAValues are extra cell values read as missing, in addition to
	// DefaultNAValues.
	NAValues []string `json:"na_values,omitempty" yaml:"na_values,omitempty"`
}

// DefaultNAValues are the cell values read as missing by default.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// DefaultCSVSettings returns the settings used when the model document does
// not provide any.
func DefaultCSVSettings() CSVSettings {
	settings := CSVSettings{}
	applyCSVDefaults(&settings)
	return settings
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// ErrNoFileNames is returned when the model document lists no input files.
var ErrNoFileNames = errors.New("no file_names specified in config")

// Load reads the model configuration from a JSON or YAML file.
//
// PARAMETERS:
//   - configPath: The path to the model document.
//
// RETURNS:
//   - A pointer to the ModelConfig struct with defaults applied.
//   - An error if the file cannot be read, parsed or is invalid.
func Load(configPath string) (*ModelConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// Parse decodes a model document. ext selects the format: ".yaml" and ".yml"
// are YAML, anything else is JSON.
func Parse(data []byte, ext string) (*ModelConfig, error) {
	var cfg ModelConfig

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *ModelConfig) {
	if cfg.ColumnMapping == nil {
		cfg.ColumnMapping = map[string]string{}
	}
	if cfg.Columns == nil {
		cfg.Columns = map[string]ColumnSpec{}
	}
	if cfg.Join.Type == "" {
		cfg.Join.Type = JoinLeft
	}
	cfg.Join.Type = JoinType(strings.ToLower(string(cfg.Join.Type)))

	if cfg.DefaultType == "" {
		cfg.DefaultType = TypeString
	}

	for name, spec := range cfg.Columns {
		if spec.Type == TypeArrayOfStrings && spec.Delimiter == "" {
			spec.Delimiter = ","
		}
		cfg.Columns[name] = spec
	}

	applyCSVDefaults(&cfg.CSV)
}

func applyCSVDefaults(settings *CSVSettings) {
	if settings.Delimiter == "" {
		settings.Delimiter = ","
	}
	if settings.Encoding == "" {
		settings.Encoding = "utf-8"
	}
}

// validate checks the fields whose absence or invalidity is fatal.
func validate(cfg *ModelConfig) error {
	if len(cfg.FileNames) == 0 {
		return ErrNoFileNames
	}

	for i, name := range cfg.FileNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("file_names[%d] is empty", i)
		}
	}

	if !cfg.Join.Type.Valid() {
		return fmt.Errorf("unknown join type %q (expected inner, left, right or outer)", cfg.Join.Type)
	}

	if !cfg.DefaultType.IsScalar() {
		return fmt.Errorf("default_type %q is not a scalar column type", cfg.DefaultType)
	}

	for name, spec := range cfg.Columns {
		if spec.Type == "" {
			return fmt.Errorf("column %q has no type", name)
		}
		if !spec.Type.Valid() {
			return fmt.Errorf("column %q has unknown type %q", name, spec.Type)
		}
	}

	return nil
}
