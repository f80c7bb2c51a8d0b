package dataprocessing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

// Balance groups of the MI_MARGN credit summary
const (
	marginGroupShares = "margin"
	marginGroupShort  = "short"
	marginGroupValue  = "marginValue"
)

type marginBalance struct {
	today decimal.Decimal
	prev  decimal.Decimal
}

func (b marginBalance) change() decimal.Decimal {
	return b.today.Sub(b.prev)
}

// decomposeMargin emits the margin purchase and short sale balances and their
// day-over-day changes.
func (e *Engine) decomposeMargin(table domain.Table, kind domain.ReportKind, date time.Time, dict FieldDictionary) *domain.OutputRecord {
	rows := rowsForDay(table, date, dict)
	if len(rows) == 0 {
		return nil
	}

	groups := make(map[string]marginBalance)
	for _, fields := range rows {
		group, ok := e.catalog.MarginLabels[strings.TrimSpace(fields[KeyLabel])]
		if !ok {
			continue
		}
		groups[group] = marginBalance{
			today: NormalizeField(fields, "balanceToday", dict),
			prev:  NormalizeField(fields, "balancePrev", dict),
		}
	}
	if len(groups) == 0 {
		return nil
	}

	shares := groups[marginGroupShares]
	short := groups[marginGroupShort]
	value := groups[marginGroupValue]

	return AssembleFields(date, kind, map[string]decimal.Decimal{
		"marginBalance":            shares.today,
		"marginBalanceChange":      shares.change(),
		"marginBalanceValue":       value.today,
		"marginBalanceValueChange": value.change(),
		"shortBalance":             short.today,
		"shortBalanceChange":       short.change(),
	})
}

// decomposeMarginSummary reads the same balances from a positional summary
// such as TPEx's margin/balance, where one row may hold several groups.
func decomposeMarginSummary(table domain.Table, kind domain.ReportKind, date time.Time, layout MarginSummaryLayout) *domain.OutputRecord {
	groups := make(map[string]marginBalance)
	for _, row := range table.Rows {
		if layout.LabelColumn >= len(row) {
			continue
		}
		for _, cols := range layout.Rows[cleanLabel(row[layout.LabelColumn])] {
			groups[cols.Group] = marginBalance{
				today: cellValue(row, cols.Today),
				prev:  cellValue(row, cols.Prev),
			}
		}
	}
	if len(groups) == 0 {
		return nil
	}

	shares := groups[marginGroupShares]
	short := groups[marginGroupShort]
	value := groups[marginGroupValue]

	return AssembleFields(date, kind, map[string]decimal.Decimal{
		"marginBalance":            shares.today,
		"marginBalanceChange":      shares.change(),
		"marginBalanceValue":       value.today,
		"marginBalanceValueChange": value.change(),
		"shortBalance":             short.today,
		"shortBalanceChange":       short.change(),
	})
}

// cellValue normalizes row[i]; cells past the end of the row are zero.
func cellValue(row []string, i int) decimal.Decimal {
	if i < 0 || i >= len(row) {
		return decimal.Zero
	}
	return Normalize(row[i])
}
