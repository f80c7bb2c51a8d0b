package dataprocessing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

// ResolveCategory maps a trader-category code to its category. Unknown codes
// resolve to CategoryOther and never enter a series.
func ResolveCategory(code string, s domain.Sentinels) domain.Category {
	switch strings.TrimSpace(code) {
	case s.AllTraders:
		return domain.CategoryAll
	case s.SpecificTraders:
		return domain.CategorySpecific
	default:
		return domain.CategoryOther
	}
}

// ResolveBucket maps a contract-month code to its bucket. queryMonth is the
// YYYYMM of the query date. Months other than the query month are excluded.
func ResolveBucket(code, queryMonth string, s domain.Sentinels) (domain.Bucket, bool) {
	code = strings.TrimSpace(code)
	switch code {
	case s.AllMonths:
		return domain.BucketAllMonths, true
	case s.WeeklyContracts:
		return domain.BucketWeekly, true
	case queryMonth:
		return domain.BucketFrontMonth, true
	default:
		return 0, false
	}
}

// ResolveRight maps an option right label to Call or Put.
func ResolveRight(code string, s domain.Sentinels) (domain.Right, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range s.CallCodes {
		if code == strings.ToUpper(c) {
			return domain.RightCall, true
		}
	}
	for _, p := range s.PutCodes {
		if code == strings.ToUpper(p) {
			return domain.RightPut, true
		}
	}
	return domain.RightNone, false
}

// PositionRow is one normalized large-trader row before classification.
type PositionRow struct {
	Date         time.Time
	Contract     string
	RightCode    string
	CategoryCode string
	MonthCode    string
	Values       map[domain.Metric]decimal.Decimal
}

// NormalizePositionRow normalizes the numeric columns of a translated
// large-trader row and derives the net columns.
func NormalizePositionRow(fields map[string]string, date time.Time, dict FieldDictionary) PositionRow {
	long5 := NormalizeField(fields, KeyTop5Long, dict)
	short5 := NormalizeField(fields, KeyTop5Short, dict)
	long10 := NormalizeField(fields, KeyTop10Long, dict)
	short10 := NormalizeField(fields, KeyTop10Short, dict)

	return PositionRow{
		Date:         date,
		Contract:     fields[KeyContract],
		RightCode:    fields[KeyRight],
		CategoryCode: fields[KeyCategory],
		MonthCode:    fields[KeyMonth],
		Values: map[domain.Metric]decimal.Decimal{
			domain.MetricTop5Long:   long5,
			domain.MetricTop5Short:  short5,
			domain.MetricTop5Net:    long5.Sub(short5),
			domain.MetricTop10Long:  long10,
			domain.MetricTop10Short: short10,
			domain.MetricTop10Net:   long10.Sub(short10),
			domain.MetricMarketOi:   NormalizeField(fields, KeyMarketOi, dict),
		},
	}
}

// Classify resolves the series key of each row. Rows with an unknown category,
// an excluded contract month, or (when withRights is set) an unknown right are
// dropped. Only the first row per series key is kept.
func Classify(rows []PositionRow, queryMonth string, withRights bool, s domain.Sentinels) []domain.CategorizedRecord {
	records := make([]domain.CategorizedRecord, 0, len(rows))
	seen := make(map[domain.SeriesKey]bool)

	for _, row := range rows {
		category := ResolveCategory(row.CategoryCode, s)
		if category == domain.CategoryOther {
			continue
		}
		bucket, ok := ResolveBucket(row.MonthCode, queryMonth, s)
		if !ok {
			continue
		}
		right := domain.RightNone
		if withRights {
			if right, ok = ResolveRight(row.RightCode, s); !ok {
				continue
			}
		}

		key := domain.SeriesKey{Right: right, Category: category, Bucket: bucket}
		if seen[key] {
			continue
		}
		seen[key] = true

		rec := domain.NewCategorizedRecord(row.Date, key)
		for m, v := range row.Values {
			rec.Values[m] = v
		}
		records = append(records, rec)
	}
	return records
}
