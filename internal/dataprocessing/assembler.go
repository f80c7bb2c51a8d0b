package dataprocessing

import (
	"time"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

var assembledBuckets = []domain.Bucket{
	domain.BucketAllMonths,
	domain.BucketFrontMonth,
	domain.BucketBackMonths,
	domain.BucketWeekly,
}

// PositionFieldKeys lists every field key a position record carries for the
// given rights. Market open interest is category independent and only
// reported once per right and bucket.
func PositionFieldKeys(rights []domain.Right) []domain.FieldKey {
	var keys []domain.FieldKey
	for _, r := range rights {
		for _, c := range nettedCategories {
			for _, b := range assembledBuckets {
				series := domain.SeriesKey{Right: r, Category: c, Bucket: b}
				for _, m := range domain.PositionMetrics {
					if m == domain.MetricMarketOi && c != domain.CategoryAll {
						continue
					}
					keys = append(keys, domain.FieldKey{Series: series, Metric: m})
				}
			}
		}
	}
	return keys
}

// AssemblePositions flattens the series of one day into an output record.
// Series absent for the day contribute zeros.
func AssemblePositions(date time.Time, kind domain.ReportKind, set SeriesSet, rights []domain.Right) *domain.OutputRecord {
	out := domain.NewOutputRecord(date, kind)
	day := domain.DayKey(date)
	for _, key := range PositionFieldKeys(rights) {
		value := decimal.Zero
		if rec, ok := set.Lookup(key.Series, day); ok {
			value = rec.Value(key.Metric)
		}
		out.Set(key.Name(), value)
	}
	return out
}

// AssembleInvestors flattens institutional flows into an output record as
// {category}Buy, {category}Sell and {category}NetBuySell.
func AssembleInvestors(date time.Time, kind domain.ReportKind, flows map[string]InvestorFlow) *domain.OutputRecord {
	out := domain.NewOutputRecord(date, kind)
	for _, category := range InvestorOrder {
		flow := flows[category]
		out.Set(category+"Buy", flow.Buy)
		out.Set(category+"Sell", flow.Sell)
		out.Set(category+"NetBuySell", flow.NetBuySell)
	}
	return out
}

// AssembleFields copies plain canonical values into an output record.
func AssembleFields(date time.Time, kind domain.ReportKind, values map[string]decimal.Decimal) *domain.OutputRecord {
	out := domain.NewOutputRecord(date, kind)
	for name, v := range values {
		out.Set(name, v)
	}
	return out
}
