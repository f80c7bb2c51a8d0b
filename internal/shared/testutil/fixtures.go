package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

// Day parses a YYYY-MM-DD date in UTC, failing the test on error.
func Day(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", s, err)
	}
	return d
}

// Record builds an output record from name/value pairs such as
// Record(t, "2024-01-02", kind, "tradeVolume", "100", "price", "17500.5").
func Record(t testing.TB, date string, kind domain.ReportKind, pairs ...string) *domain.OutputRecord {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("odd number of field pairs: %v", pairs)
	}

	record := domain.NewOutputRecord(Day(t, date), kind)
	for i := 0; i < len(pairs); i += 2 {
		record.Set(pairs[i], decimal.RequireFromString(pairs[i+1]))
	}
	return record
}
