package dataprocessing

import (
	"strings"

	"golang.org/x/text/width"

	"twxcli/pkg/contracts/domain"
)

// Canonical keys shared by several dictionaries
const (
	KeyDate     = "date"
	KeyContract = "contract"
	KeyMonth    = "month"
	KeyRight    = "right"
	KeyCategory = "category"
	KeyLabel    = "label"

	KeyTop5Long   = "top5Long"
	KeyTop5Short  = "top5Short"
	KeyTop10Long  = "top10Long"
	KeyTop10Short = "top10Short"
	KeyMarketOi   = "marketOi"
)

// Market breadth keys
const (
	BreadthUp        = "up"
	BreadthLimitUp   = "limitUp"
	BreadthDown      = "down"
	BreadthLimitDown = "limitDown"
	BreadthUnchanged = "unchanged"
	BreadthUnmatched = "unmatched"
)

// FieldDictionary maps localized column labels to canonical keys.
// Percent-style keys are scaled to fractions during normalization.
type FieldDictionary struct {
	labels  map[string]string
	percent map[string]bool
}

// NewFieldDictionary builds an immutable dictionary.
func NewFieldDictionary(labels map[string]string, percentKeys ...string) FieldDictionary {
	d := FieldDictionary{
		labels:  make(map[string]string, len(labels)),
		percent: make(map[string]bool, len(percentKeys)),
	}
	for label, key := range labels {
		d.labels[cleanLabel(label)] = key
	}
	for _, key := range percentKeys {
		d.percent[key] = true
	}
	return d
}

// Key returns the canonical key for a column label.
func (d FieldDictionary) Key(label string) (string, bool) {
	key, ok := d.labels[cleanLabel(label)]
	return key, ok
}

// IsPercent reports whether the canonical key holds a percentage.
func (d FieldDictionary) IsPercent(key string) bool {
	return d.percent[key]
}

// Len returns the number of labels known to the dictionary.
func (d FieldDictionary) Len() int {
	return len(d.labels)
}

// cleanLabel folds full-width punctuation so "金額（仟元）" and "金額(仟元)" match.
func cleanLabel(label string) string {
	return strings.TrimSpace(width.Narrow.String(strings.TrimPrefix(label, "\ufeff")))
}

// Catalog is the static, read-only configuration of the engine: field
// dictionaries, row-label tables and sentinel codes per report kind.
type Catalog struct {
	Sentinels domain.Sentinels

	// FuturesContract and OptionsContract select rows of the large-trader downloads.
	FuturesContract string
	OptionsContract string

	Dictionaries map[domain.ReportKind]FieldDictionary

	// InvestorLabels maps a row label to an institutional sub-category key.
	InvestorLabels map[domain.ReportKind]map[string]string

	// IdentityLabels maps the TAIFEX identity column to an output prefix.
	IdentityLabels map[string]string

	// MarginLabels maps the MI_MARGN item column to a balance group.
	MarginLabels map[string]string

	// Positional reports carry no usable header and are read by layout.
	Breadth         map[domain.ReportKind]BreadthLayout
	MarginSummaries map[domain.ReportKind]MarginSummaryLayout
}

// BreadthLayout locates advance/decline counts. With RowKeys each row holds
// one count in ValueColumn, written "count(limit)" for up and down; with
// Columns the first row holds every count. A key listed twice is summed.
type BreadthLayout struct {
	RowKeys     []string
	ValueColumn int
	Columns     map[int]string
}

// BalanceColumns locates one balance group's previous and current values.
type BalanceColumns struct {
	Group string
	Prev  int
	Today int
}

// MarginSummaryLayout locates balances in a summary whose rows are named by
// LabelColumn.
type MarginSummaryLayout struct {
	LabelColumn int
	Rows        map[string][]BalanceColumns
}

// Dictionary returns the field dictionary of a report kind.
func (c Catalog) Dictionary(kind domain.ReportKind) (FieldDictionary, bool) {
	d, ok := c.Dictionaries[kind]
	return d, ok
}

// Supports reports whether the catalog can decompose the kind.
func (c Catalog) Supports(kind domain.ReportKind) bool {
	if _, ok := c.Dictionaries[kind]; ok {
		return true
	}
	if _, ok := c.Breadth[kind]; ok {
		return true
	}
	_, ok := c.MarginSummaries[kind]
	return ok
}

var largeTraderLabels = map[string]string{
	"日期":        KeyDate,
	"商品(契約)":    KeyContract,
	"到期月份(週別)":  KeyMonth,
	"交易人類別":     KeyCategory,
	"買賣權":       KeyRight,
	"買賣權別":      KeyRight,
	"前五大交易人買方":  KeyTop5Long,
	"前五大交易人賣方":  KeyTop5Short,
	"前十大交易人買方":  KeyTop10Long,
	"前十大交易人賣方":  KeyTop10Short,
	"全市場未沖銷部位數": KeyMarketOi,
}

// DefaultCatalog returns the catalog matching the exchanges' current downloads.
func DefaultCatalog() Catalog {
	return Catalog{
		Sentinels:       domain.DefaultSentinels(),
		FuturesContract: "TX",
		OptionsContract: "TXO",
		Dictionaries: map[domain.ReportKind]FieldDictionary{
			domain.KindLargeTradersFutures: NewFieldDictionary(largeTraderLabels),
			domain.KindLargeTradersOptions: NewFieldDictionary(largeTraderLabels),
			domain.KindPutCallRatio: NewFieldDictionary(map[string]string{
				"日期":         KeyDate,
				"賣權成交量":      "putVolume",
				"買權成交量":      "callVolume",
				"買賣權成交量比率%":  "putCallVolumeRatio",
				"賣權未平倉量":     "putOi",
				"買權未平倉量":     "callOi",
				"買賣權未平倉量比率%": "putCallOiRatio",
			}, "putCallVolumeRatio", "putCallOiRatio"),
			domain.KindInstitutionalFutures: NewFieldDictionary(map[string]string{
				"日期":              KeyDate,
				"身份別":             KeyCategory,
				"多方交易口數":          "longTradeVolume",
				"多方交易契約金額(千元)":    "longTradeValue",
				"空方交易口數":          "shortTradeVolume",
				"空方交易契約金額(千元)":    "shortTradeValue",
				"多空交易口數淨額":        "netTradeVolume",
				"多空交易契約金額淨額(千元)":  "netTradeValue",
				"多方未平倉口數":         "longOiVolume",
				"多方未平倉契約金額(千元)":   "longOiValue",
				"空方未平倉口數":         "shortOiVolume",
				"空方未平倉契約金額(千元)":   "shortOiValue",
				"多空未平倉口數淨額":       "netOiVolume",
				"多空未平倉契約金額淨額(千元)": "netOiValue",
			}),
			domain.KindTWSEInstitutional: NewFieldDictionary(map[string]string{
				"單位名稱": KeyLabel,
				"買進金額": "buy",
				"賣出金額": "sell",
				"買賣差額": "netBuySell",
			}),
			domain.KindTPExInstitutional: NewFieldDictionary(map[string]string{
				"單位名稱":    KeyLabel,
				"買進金額":    "buy",
				"買進金額(元)": "buy",
				"賣出金額":    "sell",
				"賣出金額(元)": "sell",
				"買賣超":     "netBuySell",
				"買賣超(元)":  "netBuySell",
			}),
			domain.KindTWSEMarginTransactions: NewFieldDictionary(map[string]string{
				"項目":      KeyLabel,
				"買進":      "purchase",
				"賣出":      "sale",
				"現金(券)償還": "redemption",
				"前日餘額":    "balancePrev",
				"今日餘額":    "balanceToday",
			}),
			domain.KindTWSEMarketTrades: NewFieldDictionary(map[string]string{
				"日期":        KeyDate,
				"成交股數":      "tradeVolume",
				"成交金額":      "tradeValue",
				"成交筆數":      "transaction",
				"發行量加權股價指數": "price",
				"漲跌點數":      "change",
			}),
			domain.KindTPExMarketTrades: NewFieldDictionary(map[string]string{
				"日期":       KeyDate,
				"成交股數(仟股)": "tradeVolume",
				"金額(仟元)":   "tradeValue",
				"筆數":       "transaction",
				"櫃買指數":     "price",
				"漲/跌":      "change",
			}),
		},
		InvestorLabels: map[domain.ReportKind]map[string]string{
			domain.KindTWSEInstitutional: {
				"自營商(自行買賣)":      InvestorDealersProprietary,
				"自營商(避險)":        InvestorDealersHedge,
				"投信":             InvestorSITC,
				"外資及陸資(不含外資自營商)": InvestorForeignDealersExcluded,
				"外資自營商":          InvestorForeignDealers,
			},
			domain.KindTPExInstitutional: {
				"外資及陸資(不含自營商)": InvestorForeignDealersExcluded,
				"外資自營商":        InvestorForeignDealers,
				"外資及陸資合計":      InvestorForeignInvestors,
				"投信":           InvestorSITC,
				"自營商(自行買賣)":    InvestorDealersProprietary,
				"自營商(避險)":      InvestorDealersHedge,
				"自營商合計":        InvestorDealers,
			},
		},
		IdentityLabels: map[string]string{
			"自營商":   "dealers",
			"投信":    "sitc",
			"外資及陸資": "fini",
		},
		MarginLabels: map[string]string{
			"融資(交易單位)": marginGroupShares,
			"融券(交易單位)": marginGroupShort,
			"融資金額(仟元)": marginGroupValue,
		},
		Breadth: map[domain.ReportKind]BreadthLayout{
			// MI_INDEX 漲跌證券數合計, stocks column
			domain.KindTWSEMarketBreadth: {
				RowKeys:     []string{BreadthUp, BreadthDown, BreadthUnchanged, BreadthUnmatched, BreadthUnmatched},
				ValueColumn: 2,
			},
			domain.KindTPExMarketBreadth: {
				Columns: map[int]string{
					7:  BreadthUp,
					8:  BreadthLimitUp,
					9:  BreadthDown,
					10: BreadthLimitDown,
					11: BreadthUnchanged,
					12: BreadthUnmatched,
				},
			},
		},
		MarginSummaries: map[domain.ReportKind]MarginSummaryLayout{
			domain.KindTPExMarginTransactions: {
				LabelColumn: 1,
				Rows: map[string][]BalanceColumns{
					"合計(張)": {
						{Group: marginGroupShares, Prev: 2, Today: 6},
						{Group: marginGroupShort, Prev: 10, Today: 14},
					},
					"融資金(仟元)": {
						{Group: marginGroupValue, Prev: 2, Today: 6},
					},
				},
			},
		},
	}
}
