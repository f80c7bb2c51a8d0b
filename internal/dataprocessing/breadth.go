package dataprocessing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"twxcli/pkg/contracts/domain"
)

var breadthKeys = []string{BreadthUp, BreadthLimitUp, BreadthDown, BreadthLimitDown, BreadthUnchanged, BreadthUnmatched}

// breadthLimitKeys names where the parenthesized limit count of a row goes.
var breadthLimitKeys = map[string]string{
	BreadthUp:   BreadthLimitUp,
	BreadthDown: BreadthLimitDown,
}

// decomposeBreadth counts advancing, declining and unchanged issues. The
// breadth tables are published for the requested day only and carry no date.
func decomposeBreadth(table domain.Table, kind domain.ReportKind, date time.Time, layout BreadthLayout) *domain.OutputRecord {
	values := make(map[string]decimal.Decimal, len(breadthKeys))
	for _, key := range breadthKeys {
		values[key] = decimal.Zero
	}

	found := false
	if len(layout.RowKeys) > 0 {
		for i, row := range table.Rows {
			if i >= len(layout.RowKeys) || layout.ValueColumn >= len(row) {
				continue
			}
			key := layout.RowKeys[i]
			count, limit := splitLimit(row[layout.ValueColumn])
			values[key] = values[key].Add(count)
			if limitKey, ok := breadthLimitKeys[key]; ok {
				values[limitKey] = values[limitKey].Add(limit)
			}
			found = true
		}
	} else if len(table.Rows) > 0 {
		row := table.Rows[0]
		for col, key := range layout.Columns {
			if col < len(row) {
				values[key] = values[key].Add(cellValue(row, col))
				found = true
			}
		}
	}

	if !found {
		return nil
	}
	return AssembleFields(date, kind, values)
}

// splitLimit parses "5,001(123)" into the count and the limit-move count.
// Cells without parentheses have a zero limit.
func splitLimit(cell string) (count, limit decimal.Decimal) {
	cell = width.Narrow.String(strings.TrimSpace(cell))
	open := strings.Index(cell, "(")
	if open < 0 {
		return NormalizeText(cell), decimal.Zero
	}
	inner := strings.TrimSuffix(strings.TrimSpace(cell[open+1:]), ")")
	return NormalizeText(cell[:open]), NormalizeText(inner)
}
