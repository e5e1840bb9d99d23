package google

import (
	"fmt"
	"strconv"
	"strings"
)

// findReportRow returns the 1-based row holding the (household, year,
// month) key, or 0 when no row matches. Rows with malformed year or
// month cells are skipped rather than matched.
func findReportRow(values [][]any, householdID string, year, month int) int {
	for i, row := range values {
		if len(row) < 3 {
			continue
		}
		if cellString(row[0]) != householdID {
			continue
		}
		y, ok := cellInt(row[1])
		if !ok || y != year {
			continue
		}
		m, ok := cellInt(row[2])
		if !ok || m != month {
			continue
		}
		return i + 1
	}
	return 0
}

func cellString(v any) string {
	return strings.TrimSpace(fmt.Sprint(v))
}

// cellInt parses a sheet cell as an integer. Sheets returns numbers as
// strings with USER_ENTERED, sometimes with a decimal tail.
func cellInt(v any) (int, bool) {
	s := cellString(v)
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f), true
	}
	return 0, false
}
