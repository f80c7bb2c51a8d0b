package dataprocessing

import (
	"time"

	"github.com/shopspring/decimal"

	"twxcli/pkg/contracts/domain"
)

var putCallKeys = []string{
	"putVolume",
	"callVolume",
	"putCallVolumeRatio",
	"putOi",
	"callOi",
	"putCallOiRatio",
}

func (e *Engine) decomposePutCallRatio(table domain.Table, kind domain.ReportKind, date time.Time, dict FieldDictionary) *domain.OutputRecord {
	rows := rowsForDay(table, date, dict)
	if len(rows) == 0 {
		return nil
	}

	values := make(map[string]decimal.Decimal, len(putCallKeys))
	for _, key := range putCallKeys {
		values[key] = NormalizeField(rows[0], key, dict)
	}
	return AssembleFields(date, kind, values)
}
