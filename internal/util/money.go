package util

import "strconv"

// FormatINR renders an amount the way order summaries expect it:
// rupee sign, no trailing zeros (₹250, ₹99.5).
func FormatINR(amount float64) string {
	return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
}
