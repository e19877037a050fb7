package timer

import "fmt"

// FormatSeconds renders a total with the coarsest sensible units:
// "45s", "2m", "2m5s", "1h", "1h1m". Seconds are dropped once an hour is reached.
func FormatSeconds(total int64) string {
	if total < 0 {
		total = 0
	}
	switch {
	case total < 60:
		return fmt.Sprintf("%ds", total)
	case total < 3600:
		m, s := total/60, total%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		h, m := total/3600, (total%3600)/60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// FormatHours renders seconds as decimal hours with one digit, e.g. "1.5".
func FormatHours(total int64) string {
	return fmt.Sprintf("%.1f", float64(total)/3600)
}
