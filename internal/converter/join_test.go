package converter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// textTable builds a table of text columns from a header and rows. The
// string "<nil>" stands for a null cell.
func textTable(t *testing.T, header []string, rows ...[]string) *types.Table {
	t.Helper()
	cols := make([]*types.Column, len(header))
	for i, name := range header {
		values := make([]any, len(rows))
		for r, row := range rows {
			if row[i] != "<nil>" {
				values[r] = row[i]
			}
		}
		cols[i] = types.NewColumn(name, types.KindText, values)
	}
	tbl, err := types.NewTable(cols...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func rows(tbl *types.Table) [][]any {
	out := make([][]any, tbl.NumRows())
	for i := range out {
		out[i] = tbl.Row(i)
	}
	return out
}

func TestResolveJoinKey(t *testing.T) {
	left := textTable(t, []string{"a", "id", "code"})
	right := textTable(t, []string{"code", "id", "z"})

	tests := []struct {
		name      string
		preferred string
		want      string
	}{
		{"configured key present", "code", "code"},
		{"no configured key", "", "id"},
		{"configured key missing", "z", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveJoinKey(left, right, tt.preferred)
			if err != nil || got != tt.want {
				t.Errorf("ResolveJoinKey(%q) = %q, %v; want %q", tt.preferred, got, err, tt.want)
			}
		})
	}

	_, err := ResolveJoinKey(left, textTable(t, []string{"x"}), "")
	if !errors.Is(err, ErrNoCommonColumns) {
		t.Errorf("err = %v, want ErrNoCommonColumns", err)
	}
}

func TestJoinTypes(t *testing.T) {
	left := textTable(t, []string{"id", "name"},
		[]string{"1", "a"},
		[]string{"2", "b"},
		[]string{"<nil>", "c"},
		[]string{"3", "d"},
	)
	right := textTable(t, []string{"id", "score"},
		[]string{"3", "30"},
		[]string{"1", "10"},
		[]string{"1", "11"},
		[]string{"4", "40"},
		[]string{"<nil>", "99"},
	)

	tests := []struct {
		how  config.JoinType
		want [][]any
	}{
		{
			how: config.JoinInner,
			want: [][]any{
				{"1", "a", "10"},
				{"1", "a", "11"},
				{"3", "d", "30"},
			},
		},
		{
			how: config.JoinLeft,
			want: [][]any{
				{"1", "a", "10"},
				{"1", "a", "11"},
				{"2", "b", nil},
				{nil, "c", nil},
				{"3", "d", "30"},
			},
		},
		{
			how: config.JoinRight,
			want: [][]any{
				{"3", "d", "30"},
				{"1", "a", "10"},
				{"1", "a", "11"},
				{"4", nil, "40"},
				{nil, nil, "99"},
			},
		},
		{
			how: config.JoinOuter,
			want: [][]any{
				{"1", "a", "10"},
				{"1", "a", "11"},
				{"2", "b", nil},
				{nil, "c", nil},
				{"3", "d", "30"},
				{"4", nil, "40"},
				{nil, nil, "99"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.how), func(t *testing.T) {
			got, err := Join(left, right, "id", tt.how, "1")
			if err != nil {
				t.Fatalf("Join: %v", err)
			}
			if names := got.Names(); !reflect.DeepEqual(names, []string{"id", "name", "score"}) {
				t.Fatalf("Names() = %v", names)
			}
			if !reflect.DeepEqual(rows(got), tt.want) {
				t.Errorf("rows = %v\nwant %v", rows(got), tt.want)
			}
		})
	}

	if _, err := Join(left, right, "id", config.JoinType("cross"), "1"); err == nil {
		t.Error("expected error for unknown join type")
	}
	if _, err := Join(left, right, "name", config.JoinLeft, "1"); err == nil {
		t.Error("expected error for key missing on the right")
	}
}

func TestJoinRenamesCollidingColumns(t *testing.T) {
	left := textTable(t, []string{"id", "score", "score_2"}, []string{"1", "5", "6"})
	right := textTable(t, []string{"id", "score", "score_2"}, []string{"1", "7", "8"})

	got, err := Join(left, right, "id", config.JoinLeft, "2")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"id", "score", "score_2", "score_2_2", "score_2_2_2"}
	// "score" becomes score_2, which is taken, so score_2_2. Then the right
	// score_2 becomes score_2_2, taken by now, so score_2_2_2.
	if !reflect.DeepEqual(got.Names(), want) {
		t.Errorf("Names() = %v, want %v", got.Names(), want)
	}
}

func TestMergeLeftFold(t *testing.T) {
	samples := textTable(t, []string{"Unnamed: 0", "sample_id", "site"},
		[]string{"0", "s1", "north"},
		[]string{"1", "s2", "south"},
		[]string{"2", "s3", "east"},
	)
	visits := textTable(t, []string{"sample_id", "visit"},
		[]string{"s1", "v1"},
		[]string{"s3", "v3"},
	)
	labs := textTable(t, []string{"visit", "site"},
		[]string{"v3", "lab-east"},
	)

	merged, steps, err := Merge([]*types.Table{samples, visits, labs}, config.JoinConfig{Type: config.JoinLeft})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	wantSteps := []JoinStep{
		{FileIndex: 1, Key: "sample_id", Rows: 3},
		{FileIndex: 2, Key: "site", Rows: 3},
	}
	// The third file shares "site" with the accumulated table, which comes
	// before "visit" in column order.
	if !reflect.DeepEqual(steps, wantSteps) {
		t.Errorf("steps = %+v, want %+v", steps, wantSteps)
	}

	if merged.NumRows() != samples.NumRows() {
		t.Errorf("left fold changed the row count: %d", merged.NumRows())
	}
	if !reflect.DeepEqual(merged.Names(), []string{"Unnamed: 0", "sample_id", "site", "visit", "visit_2"}) {
		t.Errorf("Names() = %v", merged.Names())
	}
}

func TestMergeErrors(t *testing.T) {
	if _, _, err := Merge(nil, config.JoinConfig{}); err == nil {
		t.Error("expected error for no tables")
	}

	a := textTable(t, []string{"a"}, []string{"1"})
	b := textTable(t, []string{"b"}, []string{"1"})
	_, _, err := Merge([]*types.Table{a, b}, config.JoinConfig{Type: config.JoinLeft})
	if !errors.Is(err, ErrNoCommonColumns) {
		t.Errorf("err = %v, want ErrNoCommonColumns", err)
	}

	single, steps, err := Merge([]*types.Table{a}, config.JoinConfig{})
	if err != nil || single != a || len(steps) != 0 {
		t.Errorf("single table: %v, %v, %v", single, steps, err)
	}
}
