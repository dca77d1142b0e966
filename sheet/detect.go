package sheet

import "strings"

var (
	identifierKeywords = []string{"roll", "enrollment", "id", "number"}
	nameKeywords       = []string{"name", "student"}
)

// Columns is the resolved pair of semantic columns for a roster table.
// Index fields are -1 only when the table has no headers at all.
type Columns struct {
	Identifier      string `json:"identifier"`
	IdentifierIndex int    `json:"identifierIndex"`
	Name            string `json:"name"`
	NameIndex       int    `json:"nameIndex"`
}

// DetectColumns picks the identifier and display-name columns from a header row.
//
// Headers are scanned in order and compared case-insensitively against the
// keyword sets by substring. The first identifier match wins; a header that
// took the identifier role is not reused for the name role. Roles without a
// match fall back to the first and second column, and a single-column table
// uses its only column for both.
func DetectColumns(headers []string) Columns {
	idIdx, nameIdx := -1, -1
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		if lower == "" {
			continue
		}
		if idIdx < 0 && containsAny(lower, identifierKeywords) {
			idIdx = i
		} else if nameIdx < 0 && containsAny(lower, nameKeywords) {
			nameIdx = i
		}
	}

	if idIdx < 0 {
		idIdx = fallbackIndex(len(headers), 0)
	}
	if nameIdx < 0 {
		nameIdx = fallbackIndex(len(headers), 1)
	}

	cols := Columns{IdentifierIndex: idIdx, NameIndex: nameIdx}
	if idIdx >= 0 {
		cols.Identifier = headers[idIdx]
	}
	if nameIdx >= 0 {
		cols.Name = headers[nameIdx]
	}
	return cols
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// fallbackIndex clamps a positional default to the available columns.
func fallbackIndex(n, want int) int {
	if n == 0 {
		return -1
	}
	if want >= n {
		return n - 1
	}
	return want
}
