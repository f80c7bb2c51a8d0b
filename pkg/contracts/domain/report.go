package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-day format used in records and APIs.
const DateLayout = "2006-01-02"

// ReportKind identifies one published report of one exchange.
type ReportKind string

const (
	KindLargeTradersFutures    ReportKind = "taifex-large-traders-futures"
	KindLargeTradersOptions    ReportKind = "taifex-large-traders-options"
	KindPutCallRatio           ReportKind = "taifex-put-call-ratio"
	KindInstitutionalFutures   ReportKind = "taifex-institutional-futures"
	KindTWSEInstitutional      ReportKind = "twse-institutional-investors"
	KindTPExInstitutional      ReportKind = "tpex-institutional-investors"
	KindTWSEMarginTransactions ReportKind = "twse-margin-transactions"
	KindTWSEMarketTrades       ReportKind = "twse-market-trades"
	KindTPExMarketTrades       ReportKind = "tpex-market-trades"
	KindTWSEMarketBreadth      ReportKind = "twse-market-breadth"
	KindTPExMarketBreadth      ReportKind = "tpex-market-breadth"
	KindTPExMarginTransactions ReportKind = "tpex-margin-transactions"
)

// Exchange operators publishing the reports
const (
	ExchangeTAIFEX = "TAIFEX"
	ExchangeTWSE   = "TWSE"
	ExchangeTPEx   = "TPEx"
)

var reportKinds = []ReportKind{
	KindLargeTradersFutures,
	KindLargeTradersOptions,
	KindPutCallRatio,
	KindInstitutionalFutures,
	KindTWSEInstitutional,
	KindTPExInstitutional,
	KindTWSEMarginTransactions,
	KindTWSEMarketTrades,
	KindTPExMarketTrades,
	KindTWSEMarketBreadth,
	KindTPExMarketBreadth,
	KindTPExMarginTransactions,
}

// AllReportKinds returns every supported report kind in a stable order.
func AllReportKinds() []ReportKind {
	kinds := make([]ReportKind, len(reportKinds))
	copy(kinds, reportKinds)
	return kinds
}

// ParseReportKind returns the kind named by s.
func ParseReportKind(s string) (ReportKind, bool) {
	for _, k := range reportKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Exchange returns the operator publishing the report.
func (k ReportKind) Exchange() string {
	switch k {
	case KindLargeTradersFutures, KindLargeTradersOptions, KindPutCallRatio, KindInstitutionalFutures:
		return ExchangeTAIFEX
	case KindTWSEInstitutional, KindTWSEMarginTransactions, KindTWSEMarketTrades, KindTWSEMarketBreadth:
		return ExchangeTWSE
	case KindTPExInstitutional, KindTPExMarketTrades, KindTPExMarketBreadth, KindTPExMarginTransactions:
		return ExchangeTPEx
	default:
		return ""
	}
}

// Table is one decoded report: a header row followed by data rows.
// Cells are raw text exactly as the exchange published them.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// IsEmpty reports whether the table carries no data rows.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// OutputRecord is the canonical numeric record of one report for one trading day.
// It encodes to a flat JSON object: {"date": ..., "kind": ..., "<field>": <number>, ...}.
type OutputRecord struct {
	Date   time.Time
	Kind   ReportKind
	Fields map[string]decimal.Decimal
}

// NewOutputRecord creates an empty record for the given day.
func NewOutputRecord(date time.Time, kind ReportKind) *OutputRecord {
	return &OutputRecord{
		Date:   date,
		Kind:   kind,
		Fields: make(map[string]decimal.Decimal),
	}
}

// Set stores a field value.
func (r *OutputRecord) Set(name string, v decimal.Decimal) {
	r.Fields[name] = v
}

// Get returns a field value, zero when the field is absent.
func (r *OutputRecord) Get(name string) decimal.Decimal {
	return r.Fields[name]
}

// FieldNames returns the record's field names sorted.
func (r *OutputRecord) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON flattens the record.
func (r OutputRecord) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{}, len(r.Fields)+2)
	for name, v := range r.Fields {
		data[name] = json.Number(v.String())
	}
	data["date"] = r.Date.Format(DateLayout)
	data["kind"] = r.Kind
	return json.Marshal(data)
}

// UnmarshalJSON reads the flat form produced by MarshalJSON.
func (r *OutputRecord) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Fields = make(map[string]decimal.Decimal, len(raw))
	for name, value := range raw {
		switch name {
		case "date":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("decode date: %w", err)
			}
			date, err := time.Parse(DateLayout, s)
			if err != nil {
				return fmt.Errorf("parse date %q: %w", s, err)
			}
			r.Date = date
		case "kind":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("decode kind: %w", err)
			}
			r.Kind = ReportKind(s)
		default:
			var d decimal.Decimal
			if err := d.UnmarshalJSON(value); err != nil {
				return fmt.Errorf("decode field %s: %w", name, err)
			}
			r.Fields[name] = d
		}
	}
	return nil
}

// DayKey returns the calendar-day key used to join records.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ListedStock is one entry of an exchange's listed-securities directory.
type ListedStock struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Market   string `json:"market"`
	Industry string `json:"industry"`
}

// Market segments of the listed-securities directory
const (
	MarketTSE = "TSE"
	MarketOTC = "OTC"
)
