// Package money formats integer minor-unit amounts.
package money

import (
	"fmt"
	"strings"
)

// Format renders 4500 USD as "45.00 USD". Negative amounts keep their sign.
func Format(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, strings.ToUpper(currency))
}

// Major returns the amount in major units for spreadsheet cells.
func Major(minor int64) float64 {
	return float64(minor) / 100
}
