package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "model.json", `{
		"file_names": ["a.csv"],
		"columns": {
			"X": {"type": "array_of_strings"},
			"D": {"type": "datetime", "format": "02.01.2006"}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Join.Type != JoinLeft {
		t.Errorf("Join.Type = %q, want left", cfg.Join.Type)
	}
	if cfg.Join.Column != "" {
		t.Errorf("Join.Column = %q, want empty", cfg.Join.Column)
	}
	if cfg.DefaultType != TypeString {
		t.Errorf("DefaultType = %q, want string", cfg.DefaultType)
	}
	if got := cfg.Columns["X"].Delimiter; got != "," {
		t.Errorf("X delimiter = %q, want ,", got)
	}
	if got := cfg.Columns["D"].Format; got != "02.01.2006" {
		t.Errorf("D format = %q", got)
	}
	if cfg.ColumnMapping == nil {
		t.Error("ColumnMapping should be an empty map, not nil")
	}
	if cfg.CSV.Delimiter != "," || cfg.CSV.Encoding != "utf-8" {
		t.Errorf("CSV defaults = %+v", cfg.CSV)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "model.yaml", `
file_names:
  - samples.csv
  - visits.csv
column_mapping:
  Sample ID: sample_id
join:
  type: INNER
  column: sample_id
columns:
  TAGS:
    type: array_of_strings
    delimiter: ";"
default_type: category
csv:
  encoding: latin1
  na_values: ["-"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.FileNames) != 2 || cfg.FileNames[1] != "visits.csv" {
		t.Errorf("FileNames = %v", cfg.FileNames)
	}
	if cfg.ColumnMapping["Sample ID"] != "sample_id" {
		t.Errorf("ColumnMapping = %v", cfg.ColumnMapping)
	}
	if cfg.Join.Type != JoinInner || cfg.Join.Column != "sample_id" {
		t.Errorf("Join = %+v", cfg.Join)
	}
	if cfg.Columns["TAGS"].Delimiter != ";" {
		t.Errorf("TAGS = %+v", cfg.Columns["TAGS"])
	}
	if cfg.DefaultType != TypeCategory {
		t.Errorf("DefaultType = %q", cfg.DefaultType)
	}
	if cfg.CSV.Encoding != "latin1" || len(cfg.CSV.NAValues) != 1 {
		t.Errorf("CSV = %+v", cfg.CSV)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "missing file_names",
			file:    "model.json",
			content: `{"columns": {}}`,
			wantErr: "no file_names",
		},
		{
			name:    "empty file name",
			file:    "model.json",
			content: `{"file_names": ["a.csv", " "]}`,
			wantErr: "file_names[1] is empty",
		},
		{
			name:    "unknown join type",
			file:    "model.json",
			content: `{"file_names": ["a.csv"], "join": {"type": "cross"}}`,
			wantErr: "unknown join type",
		},
		{
			name:    "unknown column type",
			file:    "model.json",
			content: `{"file_names": ["a.csv"], "columns": {"A": {"type": "uuid"}}}`,
			wantErr: `column "A" has unknown type`,
		},
		{
			name:    "list default type",
			file:    "model.json",
			content: `{"file_names": ["a.csv"], "default_type": "array_of_strings"}`,
			wantErr: "not a scalar column type",
		},
		{
			name:    "malformed json",
			file:    "model.json",
			content: `{"file_names": [`,
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileNamesIsSentinel(t *testing.T) {
	_, err := Load(writeConfig(t, "model.json", `{}`))
	if !errors.Is(err, ErrNoFileNames) {
		t.Fatalf("err = %v, want ErrNoFileNames", err)
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("err = %v", err)
	}
}

func TestColumnTypePredicates(t *testing.T) {
	for _, ct := range ColumnTypes {
		if !ct.Valid() {
			t.Errorf("%q should be valid", ct)
		}
	}
	if ColumnType("decimal").Valid() {
		t.Error("decimal should not be valid")
	}
	if TypeArrayOfStrings.IsScalar() {
		t.Error("array_of_strings should not be scalar")
	}
	if !TypeDatetime.IsScalar() {
		t.Error("datetime should be scalar")
	}
}
