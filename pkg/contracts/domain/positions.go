package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Category is the trader category of a large-trader position row.
type Category int

const (
	// CategoryAll covers the top five / top ten traders of every kind
	CategoryAll Category = iota
	// CategorySpecific covers disclosed specific legal-entity traders
	CategorySpecific
	// CategoryNonSpecific is All minus Specific; never published directly
	CategoryNonSpecific
	// CategoryOther marks a category code the exchange is not expected to send
	CategoryOther
)

// String returns the category name
func (c Category) String() string {
	switch c {
	case CategoryAll:
		return "All"
	case CategorySpecific:
		return "Specific"
	case CategoryNonSpecific:
		return "NonSpecific"
	default:
		return "Other"
	}
}

// Token is the category's part of a flat field name. All is implied.
func (c Category) Token() string {
	if c == CategoryAll {
		return ""
	}
	return c.String()
}

// Bucket is a contract-month grouping.
type Bucket int

const (
	BucketAllMonths Bucket = iota
	BucketFrontMonth
	// BucketBackMonths is AllMonths minus FrontMonth; never published directly
	BucketBackMonths
	BucketWeekly
)

// String returns the bucket name
func (b Bucket) String() string {
	switch b {
	case BucketAllMonths:
		return "AllMonths"
	case BucketFrontMonth:
		return "FrontMonth"
	case BucketBackMonths:
		return "BackMonths"
	case BucketWeekly:
		return "Weekly"
	default:
		return "unknown"
	}
}

// Token is the bucket's part of a flat field name. AllMonths is implied.
func (b Bucket) Token() string {
	if b == BucketAllMonths {
		return ""
	}
	return b.String()
}

// Right is the option right type; RightNone for futures.
type Right int

const (
	RightNone Right = iota
	RightCall
	RightPut
)

// Token is the right's prefix in a flat field name.
func (r Right) Token() string {
	switch r {
	case RightCall:
		return "call"
	case RightPut:
		return "put"
	default:
		return ""
	}
}

// String returns the right name
func (r Right) String() string {
	switch r {
	case RightCall:
		return "Call"
	case RightPut:
		return "Put"
	default:
		return "None"
	}
}

// Metric is one numeric measure of a large-trader position row.
type Metric int

const (
	MetricTop5Long Metric = iota
	MetricTop5Short
	MetricTop5Net
	MetricTop10Long
	MetricTop10Short
	MetricTop10Net
	MetricMarketOi
)

// PositionMetrics lists every metric in output order.
var PositionMetrics = []Metric{
	MetricTop5Long,
	MetricTop5Short,
	MetricTop5Net,
	MetricTop10Long,
	MetricTop10Short,
	MetricTop10Net,
	MetricMarketOi,
}

// String returns the legacy canonical metric name, e.g. top5LongOi
func (m Metric) String() string {
	return joinCamel(m.rank(), m.side())
}

func (m Metric) rank() string {
	switch m {
	case MetricTop5Long, MetricTop5Short, MetricTop5Net:
		return "top5"
	case MetricTop10Long, MetricTop10Short, MetricTop10Net:
		return "top10"
	default:
		return ""
	}
}

func (m Metric) side() string {
	switch m {
	case MetricTop5Long, MetricTop10Long:
		return "LongOi"
	case MetricTop5Short, MetricTop10Short:
		return "ShortOi"
	case MetricTop5Net, MetricTop10Net:
		return "NetOi"
	default:
		return "MarketOi"
	}
}

// SeriesKey identifies one position series: right x category x bucket.
type SeriesKey struct {
	Right    Right
	Category Category
	Bucket   Bucket
}

// WithCategory returns a copy of k with the category replaced.
func (k SeriesKey) WithCategory(c Category) SeriesKey {
	k.Category = c
	return k
}

// WithBucket returns a copy of k with the bucket replaced.
func (k SeriesKey) WithBucket(b Bucket) SeriesKey {
	k.Bucket = b
	return k
}

// FieldKey is the typed composite key of one output field.
type FieldKey struct {
	Series SeriesKey
	Metric Metric
}

// Name serializes the key to its flat legacy field name, e.g.
// top5SpecificFrontMonthNetOi or callFrontMonthMarketOi.
func (k FieldKey) Name() string {
	if k.Metric == MetricMarketOi {
		return joinCamel(k.Series.Right.Token(), k.Series.Bucket.Token(), k.Metric.side())
	}
	return joinCamel(k.Series.Right.Token(), k.Metric.rank(), k.Series.Category.Token(), k.Series.Bucket.Token(), k.Metric.side())
}

// CategorizedRecord is one day of one position series.
type CategorizedRecord struct {
	Date   time.Time
	Key    SeriesKey
	Values map[Metric]decimal.Decimal
}

// NewCategorizedRecord creates a record with every metric set to zero.
func NewCategorizedRecord(date time.Time, key SeriesKey) CategorizedRecord {
	values := make(map[Metric]decimal.Decimal, len(PositionMetrics))
	for _, m := range PositionMetrics {
		values[m] = decimal.Zero
	}
	return CategorizedRecord{Date: date, Key: key, Values: values}
}

// Value returns the metric value, zero when absent.
func (r CategorizedRecord) Value(m Metric) decimal.Decimal {
	return r.Values[m]
}

// joinCamel joins non-empty parts into lowerCamelCase.
func joinCamel(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(p)
		if b.Len() == 0 {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		b.WriteString(p[size:])
	}
	return b.String()
}
