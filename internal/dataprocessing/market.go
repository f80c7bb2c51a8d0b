package dataprocessing

import (
	"time"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

var marketTradeKeys = []string{"tradeVolume", "tradeValue", "transaction", "price", "change"}

// decomposeMarketTrades picks the query day out of a monthly market summary.
func (e *Engine) decomposeMarketTrades(table domain.Table, kind domain.ReportKind, date time.Time, dict FieldDictionary) *domain.OutputRecord {
	for _, fields := range TranslateTable(table, dict) {
		if _, dated := fields[KeyDate]; !dated || !matchesDay(fields, date) {
			continue
		}
		values := make(map[string]decimal.Decimal, len(marketTradeKeys))
		for _, key := range marketTradeKeys {
			values[key] = NormalizeField(fields, key, dict)
		}
		return AssembleFields(date, kind, values)
	}
	return nil
}
