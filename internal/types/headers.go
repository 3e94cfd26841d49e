package types

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnnamedPrefix starts the placeholder name given to columns with an empty
// header. Such columns are usually an index written by another tool.
const UnnamedPrefix = "Unnamed"

// NormalizeHeaders cleans the raw header row of a CSV file or spreadsheet.
//
// CLEANING OPERATIONS:
//   - Trim surrounding whitespace
//   - Normalize to Unicode NFC so visually equal headers compare equal
//   - Empty header at position i becomes "Unnamed: i" (0-based)
//   - Repeated headers become "name.1", "name.2", ...
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, header := range raw {
		header = norm.NFC.String(strings.TrimSpace(header))
		if header == "" {
			header = fmt.Sprintf("%s: %d", UnnamedPrefix, i)
		}

		if n, dup := seen[header]; dup {
			candidate := fmt.Sprintf("%s.%d", header, n)
			for _, taken := seen[candidate]; taken; _, taken = seen[candidate] {
				n++
				candidate = fmt.Sprintf("%s.%d", header, n)
			}
			seen[header] = n + 1
			seen[candidate] = 1
			header = candidate
		} else {
			seen[header] = 1
		}

		headers[i] = header
	}

	return headers
}

// UniqueName returns name if it is not taken, otherwise name_suffix, then
// name_suffix_2, name_suffix_3, ... until a free name is found.
func UniqueName(name, suffix string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	candidate := name + "_" + suffix
	for n := 2; taken(candidate); n++ {
		candidate = fmt.Sprintf("%s_%s_%d", name, suffix, n)
	}
	return candidate
}
