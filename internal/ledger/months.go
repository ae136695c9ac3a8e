package ledger

import (
	"fmt"
	"time"
)

// monthLayout is the canonical billing month form. Months in this form
// order lexically, which the store relies on.
const monthLayout = "2006-01"

// ValidMonth reports whether m is a well-formed "YYYY-MM" billing month.
func ValidMonth(m string) bool {
	_, err := time.Parse(monthLayout, m)
	return err == nil
}

// CurrentMonth returns now's billing month.
func CurrentMonth(now time.Time) string {
	return now.Format(monthLayout)
}

// MonthsOfYear returns the billing months of a year that fall due by
// now: all twelve for a past year, January through the current month
// for the current year, none for a future year.
func MonthsOfYear(year int, now time.Time) []string {
	last := 12
	switch {
	case year > now.Year():
		return nil
	case year == now.Year():
		last = int(now.Month())
	}

	months := make([]string, 0, last)
	for m := 1; m <= last; m++ {
		months = append(months, fmt.Sprintf("%04d-%02d", year, m))
	}
	return months
}
