package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var relativeTimestampRe = regexp.MustCompile(`^(\d+)\s+(minute|minutes|hour|hours|day|days)\s+ago$`)

// FormatRelativeTimestamp renders an absolute instant as the dashboard's
// relative-time string: "N minutes ago", "N hours ago", "N days ago".
func FormatRelativeTimestamp(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	mins := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case mins < 60:
		return fmt.Sprintf("%d %s ago", mins, plural(mins, "minute"))
	case hours < 24:
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour"))
	default:
		return fmt.Sprintf("%d %s ago", days, plural(days, "day"))
	}
}

// ParseRelativeTimestamp inverts FormatRelativeTimestamp. Unparsable
// strings repair to now, so malformed entries sort near the top.
func ParseRelativeTimestamp(s string, now time.Time) time.Time {
	m := relativeTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return now
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}
	switch m[2] {
	case "minute", "minutes":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour", "hours":
		return now.Add(-time.Duration(n) * time.Hour)
	default:
		return now.AddDate(0, 0, -n)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
