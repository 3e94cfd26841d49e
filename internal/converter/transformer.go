// =============================================================================
// Parquet Converter - Transformer Module
// =============================================================================
//
// This module applies the structural transformations of the model document
// to a merged table:
//   - Column renames (column_mapping)
//   - Removal of synthetic index columns ("Unnamed: 0", ...)
//
// Transformations never abort a run. Problems are returned as warnings.
//
// =============================================================================

package converter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/parquet-converter/internal/types"
)

// =============================================================================
// COLUMN MAPPING
// =============================================================================

// ApplyColumnMapping renames the columns of tbl in place.
//
// PARAMETERS:
//   - tbl: The table to modify.
//   - mapping: Old column name -> new column name.
//
// RETURNS:
//   - One warning per entry that could not be applied.
//
// RENAME RULES:
//   - All renames are resolved against the names before any rename, so
//     {"a": "b", "b": "c"} swaps names instead of chaining.
//   - Entries are processed in sorted order of the old name, which makes the
//     warnings deterministic.
//   - A missing source column is skipped with a warning.
//   - A rename onto a name held by a column that keeps it is skipped with a
//     warning.
func ApplyColumnMapping(tbl *types.Table, mapping map[string]string) []types.Warning {
	oldNames := make([]string, 0, len(mapping))
	for oldName := range mapping {
		oldNames = append(oldNames, oldName)
	}
	sort.Strings(oldNames)

	var warnings []types.Warning
	positions := make(map[string]int, len(oldNames))

	for _, oldName := range oldNames {
		i := tbl.Index(oldName)
		if i < 0 {
			warnings = append(warnings, types.Warning{
				Stage:   "rename",
				Column:  oldName,
				Message: fmt.Sprintf("cannot rename to %q: column not found", mapping[oldName]),
			})
			continue
		}
		positions[oldName] = i
	}

	// Names that stay in place after the renames.
	final := make(map[string]bool, tbl.NumColumns())
	for _, col := range tbl.Columns {
		if _, renamed := positions[col.Name]; !renamed {
			final[col.Name] = true
		}
	}

	for _, oldName := range oldNames {
		i, ok := positions[oldName]
		if !ok {
			continue
		}
		newName := mapping[oldName]
		if newName == oldName {
			final[newName] = true
			continue
		}
		if newName == "" || final[newName] {
			reason := "name already in use"
			if newName == "" {
				reason = "empty name"
			}
			warnings = append(warnings, types.Warning{
				Stage:   "rename",
				Column:  oldName,
				Message: fmt.Sprintf("cannot rename to %q: %s", newName, reason),
			})
			final[oldName] = true
			continue
		}
		tbl.Columns[i].Name = newName
		final[newName] = true
	}

	return warnings
}

// =============================================================================
// SYNTHETIC COLUMNS
// =============================================================================

// IsSyntheticColumn reports whether name is a placeholder given to a column
// without a header.
func IsSyntheticColumn(name string) bool {
	return strings.HasPrefix(name, types.UnnamedPrefix)
}

// DropSyntheticColumns removes every column whose name starts with "Unnamed"
// and returns the dropped names.
func DropSyntheticColumns(tbl *types.Table) []string {
	return tbl.DropWhere(IsSyntheticColumn)
}
