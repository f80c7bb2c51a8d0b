package dataprocessing

import (
	"strings"
	"time"

	"twxcli/pkg/contracts/domain"
)

// decomposePositions runs the large-trader pipeline: translate, normalize,
// classify, net categories, net buckets, assemble.
func (e *Engine) decomposePositions(table domain.Table, kind domain.ReportKind, date time.Time, dict FieldDictionary, contract string, rights []domain.Right) *domain.OutputRecord {
	var rows []PositionRow
	for _, fields := range rowsForDay(table, date, dict) {
		if contract != "" && !strings.EqualFold(strings.TrimSpace(fields[KeyContract]), contract) {
			continue
		}
		rows = append(rows, NormalizePositionRow(fields, date, dict))
	}
	if len(rows) == 0 {
		return nil
	}

	withRights := len(rights) > 1 || (len(rights) == 1 && rights[0] != domain.RightNone)
	records := Classify(rows, QueryMonth(date), withRights, e.catalog.Sentinels)
	if len(records) == 0 {
		return nil
	}

	set := Net(Group(records), rights)
	return AssemblePositions(date, kind, set, rights)
}
