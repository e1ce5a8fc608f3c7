package strings

import (
	"strings"
)

// DefaultCellMaxLen is the width used for free-text columns in console tables.
const DefaultCellMaxLen = 80

// WorkbookCellMaxLen is the largest number of characters a spreadsheet cell holds.
const WorkbookCellMaxLen = 32767

// MinTruncateLen is the minimum maxLen value for Truncate.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// SingleLine truncates s to maxLen runes on one line. Runs of whitespace,
// including newlines, collapse into single spaces and a truncated result ends
// with "...". maxLen is clamped to MinTruncateLen.
func SingleLine(s string, maxLen int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), maxLen)
}

// Truncate shortens s to at most maxLen runes, ending with "..." when cut.
// Line breaks are kept.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	if len(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
