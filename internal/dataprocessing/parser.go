package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"twxcli/pkg/contracts/domain"
)

// minHeaderMatches is the number of known labels a row needs to count as the header.
const minHeaderMatches = 2

// ParseWorkbook reads a report saved as an Excel workbook. The first sheet
// holding a row with enough labels known to dict is used; that row becomes the
// header and every non-empty row below it a data row.
func ParseWorkbook(filePath string, dict FieldDictionary) (domain.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			slog.Warn("Failed to read sheet", slog.String("sheet", sheet), slog.String("error", err.Error()))
			continue
		}

		headerRow := findHeaderRow(rows, dict)
		if headerRow < 0 {
			continue
		}

		slog.Info("Found report data in sheet",
			slog.String("sheet_name", sheet),
			slog.Int("header_row", headerRow),
			slog.Int("total_rows", len(rows)))

		return tableFromRows(rows, headerRow), nil
	}

	return domain.Table{}, fmt.Errorf("could not find a header row in %s", filePath)
}

// findHeaderRow returns the index of the first row whose cells match at least
// minHeaderMatches dictionary labels, or -1.
func findHeaderRow(rows [][]string, dict FieldDictionary) int {
	for i, row := range rows {
		matches := 0
		for _, cell := range row {
			if _, ok := dict.Key(cell); ok {
				matches++
			}
		}
		if matches >= minHeaderMatches || (matches > 0 && matches == dict.Len()) {
			return i
		}
	}
	return -1
}

func tableFromRows(rows [][]string, headerRow int) domain.Table {
	table := domain.Table{Header: rows[headerRow]}
	for _, row := range rows[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
