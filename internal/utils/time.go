package utils

import (
	"strings"
	"time"
)

const (
	LayoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(LayoutDate, strings.TrimSpace(s), time.Local)
}

// FormatDate formats time to YYYY-MM-DD in local timezone.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(LayoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

// IsBeforeToday compares calendar days only; the time of day of now is ignored.
// Unparseable dates report false so callers can surface a format error instead.
func IsBeforeToday(date string, now time.Time) bool {
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	return FormatDate(d) < FormatDate(now)
}

// DateOnly trims a DATE/DATETIME rendering down to YYYY-MM-DD.
func DateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}
