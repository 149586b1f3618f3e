package services

import (
	"fmt"
	"math"
	"strings"
)

// currencySymbols maps ISO codes to display symbols. Codes without an entry
// fall back to "<CODE> " as a prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"AED": "AED ",
	"CDF": "FC ",
}

// FormatMoney formats an amount in the given currency with thousands
// grouping and exactly 2 decimal places, e.g. FormatMoney(1234567.5, "USD")
// → "$1,234,567.50". All monetary display funnels through this function.
func FormatMoney(amount float64, code string) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	intPart := groupThousands(parts[0])

	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}

	result := symbol + intPart + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every 3 digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "," + result
}

// FormatQty returns a string representation of a quantity. Whole numbers
// are formatted without decimals; fractional values get 2 decimal places.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
