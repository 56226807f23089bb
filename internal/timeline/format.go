package timeline

import "fmt"

// FormatTime renders a second count as "M:SS": integer minutes without a
// leading zero or cap, then zero-padded two-digit seconds. Both parts use
// truncating division, never rounding, so 125.9 renders as "2:05".
func FormatTime(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
