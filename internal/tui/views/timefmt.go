package views

import (
	"fmt"
	"time"
)

// RelativeTime renders t against now as "now", "5m", "3h" or "2d". Times
// under a minute old, including future ones, are "now". A zero t is "".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

func unixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// clockTime is the thread timestamp: "15:04" today, "Jan 2 15:04" otherwise.
func clockTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Local()
	if y, d := t.Year(), t.YearDay(); y == now.Year() && d == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2 15:04")
}
