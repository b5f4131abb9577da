package offers

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	isoDuration   = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?)?$`)
	clockDuration = regexp.MustCompile(`^\d+h\d+m$`)
)

// FormatDuration turns an ISO-8601 duration like "P1DT7H10M" into
// "31h10m" (days merged into hours). Whole-minute durations render as
// "45min". Strings already in "XhYm" form pass through unchanged, and
// anything unparseable comes back as-is so a weird value still displays.
func FormatDuration(raw string) string {
	if raw == "" {
		return "N/A"
	}
	if clockDuration.MatchString(raw) {
		return raw
	}

	m := isoDuration.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}

	days := atoiDefault(m[1])
	hours := atoiDefault(m[2])
	minutes := atoiDefault(m[3])
	if days == 0 && hours == 0 && minutes == 0 && raw != "PT0M" {
		return raw
	}

	totalHours := days*24 + hours
	if totalHours == 0 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh%02dm", totalHours, minutes)
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
