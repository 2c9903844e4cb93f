package currency

import "fmt"

// INR is the storefront currency. All stored amounts are integers in minor
// units (paise).
const INR = "INR"

// FormatINR renders a minor-unit amount as a rupee string with Indian digit
// grouping and no fractional digits, e.g. 1994900 → "₹19,949".
func FormatINR(paise int64) string {
	rupees := paise / 100
	neg := rupees < 0
	if neg {
		rupees = -rupees
	}

	s := fmt.Sprintf("%d", rupees)
	grouped := groupIndian(s)
	if neg {
		return "-₹" + grouped
	}
	return "₹" + grouped
}

// groupIndian applies the Indian numbering system: the last three digits
// form one group, every two digits after that another (12,34,567).
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	out := digits[n-3:]
	rest := digits[:n-3]
	for len(rest) > 2 {
		out = rest[len(rest)-2:] + "," + out
		rest = rest[:len(rest)-2]
	}
	return rest + "," + out
}
