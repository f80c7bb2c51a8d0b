package dataprocessing

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

var institutionalFuturesKeys = []string{
	"longTradeVolume",
	"longTradeValue",
	"shortTradeVolume",
	"shortTradeValue",
	"netTradeVolume",
	"netTradeValue",
	"longOiVolume",
	"longOiValue",
	"shortOiVolume",
	"shortOiValue",
	"netOiVolume",
	"netOiValue",
}

// decomposeInstitutionalFutures emits {identity}{Long|Short|Net}{Trade|Oi}{Volume|Value}
// for dealers, sitc and fini.
func (e *Engine) decomposeInstitutionalFutures(table domain.Table, kind domain.ReportKind, date time.Time, dict FieldDictionary) *domain.OutputRecord {
	rows := rowsForDay(table, date, dict)
	if len(rows) == 0 {
		return nil
	}

	values := make(map[string]decimal.Decimal)
	for _, prefix := range e.catalog.IdentityLabels {
		for _, key := range institutionalFuturesKeys {
			values[prefix+upperFirst(key)] = decimal.Zero
		}
	}

	for _, fields := range rows {
		prefix, ok := e.catalog.IdentityLabels[strings.TrimSpace(fields[KeyCategory])]
		if !ok {
			continue
		}
		for _, key := range institutionalFuturesKeys {
			values[prefix+upperFirst(key)] = NormalizeField(fields, key, dict)
		}
	}
	return AssembleFields(date, kind, values)
}

// decomposeInvestors builds the buy / sell / net record of the stock market
// institutional investors, aggregating the totals the exchange omits.
func (e *Engine) decomposeInvestors(table domain.Table, kind domain.ReportKind, date time.Time, dict FieldDictionary) *domain.OutputRecord {
	rows := rowsForDay(table, date, dict)
	if len(rows) == 0 {
		return nil
	}

	labels := e.catalog.InvestorLabels[kind]
	flows := make(map[string]InvestorFlow)
	for _, fields := range rows {
		category, ok := labels[strings.TrimSpace(fields[KeyLabel])]
		if !ok {
			continue
		}
		flows[category] = InvestorFlow{
			Buy:        NormalizeField(fields, "buy", dict),
			Sell:       NormalizeField(fields, "sell", dict),
			NetBuySell: NormalizeField(fields, "netBuySell", dict),
		}
	}
	if len(flows) == 0 {
		return nil
	}

	return AssembleInvestors(date, kind, AggregateInvestors(flows, InvestorTotals))
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
