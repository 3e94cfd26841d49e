// =============================================================================
// Parquet Converter - Join Module
// =============================================================================
//
// This module merges the tables read from several input files into one.
//
// MERGE PROCESS (strict left fold):
//   accumulated = file[0]
//   for i = 1 .. n-1:
//       key         = join column shared by accumulated and file[i]
//       accumulated = join(accumulated, file[i], key)
//
// JOIN TYPES:
//   | Type  | Rows kept                                  | Row order                          |
//   |-------|--------------------------------------------|------------------------------------|
//   | inner | rows with a match on both sides            | left order, matches in right order |
//   | left  | every left row                             | left order, matches in right order |
//   | right | every right row                            | right order, matches in left order |
//   | outer | every row of both sides                    | left join order, then unmatched    |
//   |       |                                            | right rows in right order          |
//
// Keys are compared by their text form. A null key never matches anything.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/parquet-converter/internal/config"
	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// ErrNoCommonColumns is returned when two tables share no column to join on.
var ErrNoCommonColumns = errors.New("no common columns found between files")

// =============================================================================
// KEY RESOLUTION
// =============================================================================

// ResolveJoinKey picks the column used to join right onto left.
//
// PARAMETERS:
//   - left: The accumulated table.
//   - right: The table being joined.
//   - preferred: The configured join column, may be empty.
//
// RETURNS:
//   - preferred if both tables have it.
//   - Otherwise the first column of left that right also has.
//   - ErrNoCommonColumns if there is none.
func ResolveJoinKey(left, right *types.Table, preferred string) (string, error) {
	if preferred != "" && left.Has(preferred) && right.Has(preferred) {
		return preferred, nil
	}

	for _, name := range left.Names() {
		if right.Has(name) {
			return name, nil
		}
	}

	return "", ErrNoCommonColumns
}

// =============================================================================
// MERGE
// =============================================================================

// JoinStep records the key chosen for one step of a merge.
type JoinStep struct {
	// FileIndex is the position of the joined file in the input list.
	FileIndex int

	// Key is the join column.
	Key string

	// Rows is the number of rows after the step.
	Rows int
}

// Merge folds tables into one table from left to right.
//
// PARAMETERS:
//   - tables: The input tables in configuration order. Must not be empty.
//   - join: The join type and preferred key.
//
// RETURNS:
//   - The merged table. With a single input this is the input itself.
//   - One JoinStep per joined file.
//   - An error if any step has no join key.
func Merge(tables []*types.Table, join config.JoinConfig) (*types.Table, []JoinStep, error) {
	if len(tables) == 0 {
		return nil, nil, errors.New("no tables to merge")
	}

	how := join.Type
	if how == "" {
		how = config.JoinLeft
	}

	merged := tables[0]
	steps := make([]JoinStep, 0, len(tables)-1)

	for i := 1; i < len(tables); i++ {
		key, err := ResolveJoinKey(merged, tables[i], join.Column)
		if err != nil {
			return nil, nil, fmt.Errorf("joining file %d: %w", i, err)
		}

		merged, err = Join(merged, tables[i], key, how, strconv.Itoa(i))
		if err != nil {
			return nil, nil, fmt.Errorf("joining file %d on %q: %w", i, key, err)
		}

		steps = append(steps, JoinStep{FileIndex: i, Key: key, Rows: merged.NumRows()})
	}

	return merged, steps, nil
}

// =============================================================================
// JOIN
// =============================================================================

// rowPair is one output row: a left row index and a right row index, where
// -1 means the side has no matching row.
type rowPair struct {
	left, right int
}

// Join joins right onto left on the key column.
//
// PARAMETERS:
//   - left, right: The tables to join. Both must have a column named key.
//   - key: The join column.
//   - how: The join type.
//   - suffix: Appended as "_suffix" to right column names already taken.
//
// RETURNS:
//   - A new table: every left column, then every non-key right column.
//   - An error if key is missing or the join type is unknown.
func Join(left, right *types.Table, key string, how config.JoinType, suffix string) (*types.Table, error) {
	leftKey, ok := left.Column(key)
	if !ok {
		return nil, fmt.Errorf("left table has no column %q", key)
	}
	rightKey, ok := right.Column(key)
	if !ok {
		return nil, fmt.Errorf("right table has no column %q", key)
	}

	var pairs []rowPair
	switch how {
	case config.JoinInner:
		pairs = matchRows(leftKey, rightKey, false, false)
	case config.JoinLeft:
		pairs = matchRows(leftKey, rightKey, true, false)
	case config.JoinOuter:
		pairs = matchRows(leftKey, rightKey, true, true)
	case config.JoinRight:
		// Right join is a left join seen from the other side.
		pairs = matchRows(rightKey, leftKey, true, false)
		for i := range pairs {
			pairs[i].left, pairs[i].right = pairs[i].right, pairs[i].left
		}
	default:
		return nil, fmt.Errorf("unknown join type %q", how)
	}

	columns := make([]*types.Column, 0, left.NumColumns()+right.NumColumns()-1)
	taken := make(map[string]bool, cap(columns))

	for _, col := range left.Columns {
		var out *types.Column
		if col == leftKey {
			out = takeKey(leftKey, rightKey, pairs)
		} else {
			out = take(col, col.Name, pairs, func(p rowPair) int { return p.left })
		}
		columns = append(columns, out)
		taken[col.Name] = true
	}

	for _, col := range right.Columns {
		if col == rightKey {
			continue
		}
		name := types.UniqueName(col.Name, suffix, func(s string) bool { return taken[s] })
		columns = append(columns, take(col, name, pairs, func(p rowPair) int { return p.right }))
		taken[name] = true
	}

	return types.NewTable(columns...)
}

// matchRows pairs every row of outer with the matching rows of inner, in
// order. keepUnmatched keeps outer rows without a match. appendInner adds the
// inner rows that never matched at the end.
func matchRows(outer, inner *types.Column, keepUnmatched, appendInner bool) []rowPair {
	index := make(map[string][]int, inner.Len())
	for i, v := range inner.Values {
		if k, ok := types.CellText(v); ok {
			index[k] = append(index[k], i)
		}
	}

	pairs := make([]rowPair, 0, outer.Len())
	matched := make([]bool, inner.Len())

	for i, v := range outer.Values {
		var hits []int
		if k, ok := types.CellText(v); ok {
			hits = index[k]
		}
		if len(hits) == 0 {
			if keepUnmatched {
				pairs = append(pairs, rowPair{left: i, right: -1})
			}
			continue
		}
		for _, j := range hits {
			pairs = append(pairs, rowPair{left: i, right: j})
			matched[j] = true
		}
	}

	if appendInner {
		for j, hit := range matched {
			if !hit {
				pairs = append(pairs, rowPair{left: -1, right: j})
			}
		}
	}

	return pairs
}

// take gathers the values of col selected by pick into a new column.
func take(col *types.Column, name string, pairs []rowPair, pick func(rowPair) int) *types.Column {
	values := make([]any, len(pairs))
	for i, p := range pairs {
		if row := pick(p); row >= 0 {
			values[i] = col.Values[row]
		}
	}
	return types.NewColumn(name, col.Kind, values)
}

// takeKey builds the key column. Rows that exist only on the right side take
// the right key value.
func takeKey(leftKey, rightKey *types.Column, pairs []rowPair) *types.Column {
	values := make([]any, len(pairs))
	for i, p := range pairs {
		if p.left >= 0 {
			values[i] = leftKey.Values[p.left]
		} else {
			values[i] = rightKey.Values[p.right]
		}
	}
	return types.NewColumn(leftKey.Name, leftKey.Kind, values)
}
