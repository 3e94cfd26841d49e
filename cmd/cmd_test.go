package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// execute runs the root command with args and returns what it printed.
// Package flag variables keep their values between runs, so every test
// passes the flags it depends on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCSVCommand(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	writeFile(t, filepath.Join(dataDir, "samples.csv"), ",sample_id,TAGS\n0,s1,\"a,b\"\n1,s2,\n")
	writeFile(t, filepath.Join(dataDir, "visits.csv"), "sample_id,VISITDATE\ns1,2025-10-17\n")
	configPath := filepath.Join(dir, "model.json")
	writeFile(t, configPath, `{
  "file_names": ["samples.csv", "visits.csv"],
  "column_mapping": {"sample_id": "SAMPLE"},
  "join": {"type": "left", "column": "sample_id"},
  "columns": {
    "TAGS": {"type": "array_of_strings", "delimiter": ","},
    "VISITDATE": {"type": "datetime"}
  }
}`)
	summary := filepath.Join(dir, "logs", "summary.txt")

	out, err := execute(t, "csv",
		"--config", configPath,
		"--data-dir", dataDir,
		"--output", filepath.Join(dir, "out", "{original}"),
		"--summary-file", summary,
	)
	if err != nil {
		t.Fatalf("csv: %v\n%s", err, out)
	}

	output := filepath.Join(dir, "out", "model.parquet")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output not written: %v", err)
	}
	for _, want := range []string{
		"Wrote " + output,
		"SAMPLE",
		"[a, b]",
		"List columns in output:",
		"TAGS: list<",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if !strings.Contains(string(data), "SUCCESS") {
		t.Errorf("summary = %s", data)
	}

	out, err = execute(t, "inspect", output, "--rows", "1")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Rows:       2", "VISITDATE: timestamp", "... 1 more row(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(strings.ToLower(out), "snappy") {
		t.Errorf("inspect output has no snappy codec:\n%s", out)
	}
}

func TestCSVCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "model.yaml")
	writeFile(t, configPath, "file_names:\n  - absent.csv\n")

	_, err := execute(t, "csv",
		"--config", configPath,
		"--data-dir", dir,
		"--output", filepath.Join(dir, "out.parquet"),
		"--summary-file", "",
	)
	if err == nil || !strings.Contains(err.Error(), "absent.csv") {
		t.Errorf("err = %v, want missing file error", err)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), "id,x\n1,2\n")
	writeFile(t, filepath.Join(dir, "b.csv"), "other\n1\n")
	configPath := filepath.Join(dir, "model.json")
	writeFile(t, configPath, `{"file_names": ["a.csv", "b.csv"]}`)
	report := filepath.Join(dir, "validation.log")

	out, err := execute(t, "validate", "--config", configPath, "--data-dir", dir, "--report", report)
	if err == nil || !strings.Contains(err.Error(), "1 error(s)") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(out, "Join b.csv on (none)") {
		t.Errorf("output:\n%s", out)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || !strings.Contains(out, "Version:       "+Version) {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestExpandOutput(t *testing.T) {
	if got := expandOutput("public/lv_export.parquet", "cfg/model.json"); got != "public/lv_export.parquet" {
		t.Errorf("plain path changed: %q", got)
	}
	if got := expandOutput("out/{original}_v2", "cfg/model.json"); got != "out/model_v2.parquet" {
		t.Errorf("expandOutput = %q", got)
	}
}

func TestPrintPreview(t *testing.T) {
	tbl, err := types.NewTable(
		types.NewColumn("id", types.KindString, []any{"a", "b", "c"}),
		types.NewColumn("tags", types.KindStringList, []any{[]string{"x", "y"}, []string{}, nil}),
	)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := printPreview(&buf, tbl, 2); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[1], "a") || !strings.Contains(lines[1], "[x, y]") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[3] != "... 1 more row(s)" {
		t.Errorf("last line = %q", lines[3])
	}
}
