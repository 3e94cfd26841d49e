package xlsxparser

import (
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// writeWorkbook saves a workbook whose sheets are filled from cells, keyed by
// sheet name and then by cell reference.
func writeWorkbook(t *testing.T, sheets map[string]map[string]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, cells := range sheets {
		if name != "Sheet1" {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet(%s): %v", name, err)
			}
		}
		for ref, value := range cells {
			if err := f.SetCellValue(name, ref, value); err != nil {
				t.Fatalf("SetCellValue(%s!%s): %v", name, ref, err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestParseFirstSheet(t *testing.T) {
	visit := time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)
	path := writeWorkbook(t, map[string]map[string]any{
		"Sheet1": {
			"A1": "PATIENT_ID", "B1": "VISITDATE", "C1": "SCORE",
			"A2": "P-001", "B2": visit, "C2": 12.5,
			// Row 3 is left empty and must be skipped.
			"A4": "P-002", "C4": 3, "D4": "extra",
		},
	})

	tbl, err := Parse(path, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got, want := tbl.Names(), []string{"PATIENT_ID", "VISITDATE", "SCORE", "Unnamed: 3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("NumRows() = %d, want 2", tbl.NumRows())
	}

	for _, col := range tbl.Columns {
		if col.Kind != types.KindText {
			t.Errorf("column %q kind = %s, want text", col.Name, col.Kind)
		}
	}

	if got := tbl.Row(0)[0]; got != "P-001" {
		t.Errorf("PATIENT_ID[0] = %v", got)
	}
	if got := tbl.Row(1)[1]; got != nil {
		t.Errorf("VISITDATE[1] = %v, want nil", got)
	}
	if got := tbl.Row(1)[2]; got != "3" {
		t.Errorf("SCORE[1] = %v, want 3", got)
	}
	if got := tbl.Row(1)[3]; got != "extra" {
		t.Errorf("Unnamed: 3[1] = %v, want extra", got)
	}

	// Dates are read as raw serial numbers.
	raw, ok := tbl.Row(0)[1].(string)
	if !ok {
		t.Fatalf("VISITDATE[0] = %#v, want a string", tbl.Row(0)[1])
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		t.Fatalf("VISITDATE[0] = %q is not a serial number: %v", raw, err)
	}
	got, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		t.Fatalf("ExcelDateToTime: %v", err)
	}
	if !got.Equal(visit) {
		t.Errorf("serial %v = %v, want %v", serial, got, visit)
	}
}

func TestParseNamedSheet(t *testing.T) {
	path := writeWorkbook(t, map[string]map[string]any{
		"Sheet1": {"A1": "ignored"},
		"Visits": {"A1": "id", "A2": "v1", "A3": "v2"},
	})

	tbl, err := Parse(path, Options{Sheet: "Visits"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	col, ok := tbl.Column("id")
	if !ok || !reflect.DeepEqual(col.Values, []any{"v1", "v2"}) {
		t.Fatalf("id column = %+v", col)
	}

	_, err = Parse(path, Options{Sheet: "Missing"})
	if err == nil || !strings.Contains(err.Error(), `sheet "Missing" not found`) {
		t.Fatalf("missing sheet: err = %v", err)
	}
}

func TestParseHeaderOnlySheet(t *testing.T) {
	path := writeWorkbook(t, map[string]map[string]any{
		"Sheet1": {"A1": "a", "B1": "b"},
	})

	tbl, err := Parse(path, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.NumColumns() != 2 || tbl.NumRows() != 0 {
		t.Fatalf("got %d columns, %d rows", tbl.NumColumns(), tbl.NumRows())
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(filepath.Join(t.TempDir(), "absent.xlsx"), Options{}); err == nil {
		t.Error("missing workbook: expected error")
	}

	empty := writeWorkbook(t, map[string]map[string]any{"Sheet1": {}})
	if _, err := Parse(empty, Options{}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Errorf("empty sheet: err = %v", err)
	}
}

func TestReadHeadersAndSheetNames(t *testing.T) {
	path := writeWorkbook(t, map[string]map[string]any{
		"Sheet1": {"A1": "id", "B1": "id", "C1": " score "},
		"Other":  {},
	})

	headers, err := ReadHeaders(path, Options{})
	if err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	if want := []string{"id", "id.1", "score"}; !reflect.DeepEqual(headers, want) {
		t.Errorf("headers = %v, want %v", headers, want)
	}

	names, err := SheetNames(path)
	if err != nil {
		t.Fatalf("SheetNames: %v", err)
	}
	if want := []string{"Sheet1", "Other"}; !reflect.DeepEqual(names, want) {
		t.Errorf("SheetNames = %v, want %v", names, want)
	}
}
