// Package helpers provides common utility functions used across the codebase.
package helpers

import "fmt"

// Money amounts are carried as integer cents, tax rates as integer
// ten-thousandths. These helpers render the fixed-point decimal forms used
// by transaction outputs and CSV dumps.

// FormatMoney formats an amount in cents as a decimal string with two
// fractional digits. FormatMoney(123456) returns "1234.56".
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatRate formats a rate in ten-thousandths with four fractional digits.
// FormatRate(1250) returns "0.1250".
func FormatRate(rate int32) string {
	sign := ""
	if rate < 0 {
		sign = "-"
		rate = -rate
	}
	return fmt.Sprintf("%s%d.%04d", sign, rate/10000, rate%10000)
}
