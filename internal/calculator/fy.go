package calculator

import (
	"fmt"
	"time"
)

// FinancialYearEnding returns the calendar year in which the Australian
// financial year (1 July to 30 June) containing t ends.
func FinancialYearEnding(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year() + 1
	}
	return t.Year()
}

// FYLabel formats the financial year ending in endYear, e.g. 2025 -> FY2024-25.
func FYLabel(endYear int) string {
	return fmt.Sprintf("FY%d-%02d", endYear-1, endYear%100)
}

// dateOnly drops the clock so day arithmetic is not skewed by time of day or zone.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}
