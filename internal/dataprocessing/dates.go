package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// rocEpoch is the Gregorian year of ROC year 0.
const rocEpoch = 1911

// ParseReportDate parses the date formats the exchanges publish:
// 2024/01/02, 2024-01-02, 20240102 and ROC dates such as 113/01/02.
func ParseReportDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 8 && isDigits(s) {
		t, err := time.Parse("20060102", s)
		return t, err == nil
	}

	parts := strings.Split(strings.ReplaceAll(s, "-", "/"), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if year < rocEpoch {
		year += rocEpoch
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// TradingDay truncates t to its calendar day in UTC.
func TradingDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// QueryMonth returns the YYYYMM front-month code of the query date.
func QueryMonth(date time.Time) string {
	return date.Format("200601")
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// matchesDay reports whether a translated row belongs to the query date.
// Rows without a date column are single-day reports and always match.
func matchesDay(fields map[string]string, date time.Time) bool {
	raw, ok := fields[KeyDate]
	if !ok {
		return true
	}
	t, ok := ParseReportDate(raw)
	if !ok {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
