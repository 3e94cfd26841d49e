package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/types"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func columnValues(t *testing.T, tbl *types.Table, name string) []any {
	t.Helper()
	col, ok := tbl.Column(name)
	if !ok {
		t.Fatalf("column %q not found in %v", name, tbl.Names())
	}
	if col.Kind != types.KindText {
		t.Fatalf("column %q kind = %s, want text", name, col.Kind)
	}
	return col.Values
}

func TestParseBasic(t *testing.T) {
	path := writeFile(t, "a.csv", []byte(",id,name,score\n0,a1,Alice,3.5\n1,a2,,NA\n2,a3,\"Smith, J\"\n"))

	tbl, err := Parse(path, config.DefaultCSVSettings())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got, want := tbl.Names(), []string{"Unnamed: 0", "id", "name", "score"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if tbl.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", tbl.NumRows())
	}

	if got, want := columnValues(t, tbl, "name"), []any{"Alice", nil, "Smith, J"}; !reflect.DeepEqual(got, want) {
		t.Errorf("name = %v, want %v", got, want)
	}
	// "NA" is a missing-value token and the short last row is padded.
	if got, want := columnValues(t, tbl, "score"), []any{"3.5", nil, nil}; !reflect.DeepEqual(got, want) {
		t.Errorf("score = %v, want %v", got, want)
	}
}

func TestParseKeepsSurroundingWhitespace(t *testing.T) {
	tbl, err := Read(strings.NewReader("X\n\"p;q ;r\"\n"), config.DefaultCSVSettings())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := columnValues(t, tbl, "X"); !reflect.DeepEqual(got, []any{"p;q ;r"}) {
		t.Errorf("X = %v", got)
	}
}

func TestParseSettings(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		settings config.CSVSettings
		column   string
		want     []any
	}{
		{
			name:     "semicolon delimiter",
			data:     []byte("a;b\n1;2\n"),
			settings: config.CSVSettings{Delimiter: ";"},
			column:   "b",
			want:     []any{"2"},
		},
		{
			name:     "tab by name",
			data:     []byte("a\tb\n1\t2\n"),
			settings: config.CSVSettings{Delimiter: "tab"},
			column:   "b",
			want:     []any{"2"},
		},
		{
			name:     "latin1 encoding",
			data:     []byte("city\ncaf\xe9\n"),
			settings: config.CSVSettings{Encoding: "latin1"},
			column:   "city",
			want:     []any{"café"},
		},
		{
			name:     "utf-8 bom stripped from first header",
			data:     []byte("\xef\xbb\xbfid\n7\n"),
			settings: config.CSVSettings{},
			column:   "id",
			want:     []any{"7"},
		},
		{
			name:     "custom na values",
			data:     []byte("v\n-\nx\n"),
			settings: config.CSVSettings{NAValues: []string{"-"}},
			column:   "v",
			want:     []any{nil, "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Parse(writeFile(t, "in.csv", tt.data), tt.settings)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := columnValues(t, tbl, tt.column); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.column, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Read(strings.NewReader(""), config.DefaultCSVSettings()); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty input: err = %v, want ErrEmptyFile", err)
	}

	_, err := Read(strings.NewReader("a,b\n1,2,3\n"), config.DefaultCSVSettings())
	if err == nil || !strings.Contains(err.Error(), "line 2 has 3 fields") {
		t.Errorf("long row: err = %v", err)
	}

	if _, err := Read(strings.NewReader("a\n"), config.CSVSettings{Encoding: "klingon"}); err == nil {
		t.Error("unknown encoding: expected error")
	}

	if _, err := Read(strings.NewReader("a\n"), config.CSVSettings{Delimiter: "::"}); err == nil {
		t.Error("multi-character delimiter: expected error")
	}

	if _, err := Parse(filepath.Join(t.TempDir(), "absent.csv"), config.DefaultCSVSettings()); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestParseHeaderOnly(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b\n"), config.DefaultCSVSettings())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.NumColumns() != 2 || tbl.NumRows() != 0 {
		t.Fatalf("got %d columns, %d rows", tbl.NumColumns(), tbl.NumRows())
	}
}

func TestReadHeaders(t *testing.T) {
	path := writeFile(t, "h.csv", []byte("id,id, ,name\n1,2,3,4\n"))

	headers, err := ReadHeaders(path, config.DefaultCSVSettings())
	if err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	want := []string{"id", "id.1", "Unnamed: 2", "name"}
	if !reflect.DeepEqual(headers, want) {
		t.Errorf("headers = %v, want %v", headers, want)
	}
}
