package dataprocessing

import (
	"twxcli/pkg/contracts/domain"
)

// Derive computes minuend - subtrahend for every metric, joining the two
// series on calendar day. A minuend day with no matching subtrahend day
// yields an all-zero record, not a copy of the minuend.
func Derive(minuend, subtrahend []domain.CategorizedRecord, key domain.SeriesKey) []domain.CategorizedRecord {
	byDay := make(map[string]domain.CategorizedRecord, len(subtrahend))
	for _, rec := range subtrahend {
		day := domain.DayKey(rec.Date)
		if _, exists := byDay[day]; !exists {
			byDay[day] = rec
		}
	}

	derived := make([]domain.CategorizedRecord, 0, len(minuend))
	for _, m := range minuend {
		out := domain.NewCategorizedRecord(m.Date, key)
		if s, ok := byDay[domain.DayKey(m.Date)]; ok {
			for _, metric := range domain.PositionMetrics {
				out.Values[metric] = m.Value(metric).Sub(s.Value(metric))
			}
		}
		derived = append(derived, out)
	}
	return derived
}

// SeriesSet holds the records of each position series.
type SeriesSet map[domain.SeriesKey][]domain.CategorizedRecord

// Group builds a series set from classified records.
func Group(records []domain.CategorizedRecord) SeriesSet {
	set := make(SeriesSet)
	for _, rec := range records {
		set[rec.Key] = append(set[rec.Key], rec)
	}
	return set
}

// Lookup returns the record of the series for the given day.
func (s SeriesSet) Lookup(key domain.SeriesKey, day string) (domain.CategorizedRecord, bool) {
	for _, rec := range s[key] {
		if domain.DayKey(rec.Date) == day {
			return rec, true
		}
	}
	return domain.CategorizedRecord{}, false
}

var publishedBuckets = []domain.Bucket{domain.BucketAllMonths, domain.BucketFrontMonth, domain.BucketWeekly}

var nettedCategories = []domain.Category{domain.CategoryAll, domain.CategorySpecific, domain.CategoryNonSpecific}

// NetCategories adds the NonSpecific series (All - Specific) of every
// published bucket for each right.
func NetCategories(set SeriesSet, rights []domain.Right) {
	for _, r := range rights {
		for _, b := range publishedBuckets {
			all := domain.SeriesKey{Right: r, Category: domain.CategoryAll, Bucket: b}
			set[all.WithCategory(domain.CategoryNonSpecific)] = Derive(set[all], set[all.WithCategory(domain.CategorySpecific)], all.WithCategory(domain.CategoryNonSpecific))
		}
	}
}

// NetBuckets adds the BackMonths series (AllMonths - FrontMonth) of the All,
// Specific and NonSpecific categories for each right. It must run after
// NetCategories.
func NetBuckets(set SeriesSet, rights []domain.Right) {
	for _, r := range rights {
		for _, c := range nettedCategories {
			allMonths := domain.SeriesKey{Right: r, Category: c, Bucket: domain.BucketAllMonths}
			back := allMonths.WithBucket(domain.BucketBackMonths)
			set[back] = Derive(set[allMonths], set[allMonths.WithBucket(domain.BucketFrontMonth)], back)
		}
	}
}

// Net runs category netting followed by bucket netting.
func Net(set SeriesSet, rights []domain.Right) SeriesSet {
	NetCategories(set, rights)
	NetBuckets(set, rights)
	return set
}
