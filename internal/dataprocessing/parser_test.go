package dataprocessing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"twxcli/pkg/contracts/domain"
)

// TestParseWorkbook ensures a saved report round-trips into a table the engine can decompose.
func TestParseWorkbook(t *testing.T) {
	tmpDir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"臺股期貨大額交易人未沖銷部位結構表"},
		{},
		{"日期", "商品(契約)", "到期月份(週別)", "交易人類別", "前五大交易人買方", "前五大交易人賣方"},
		{"2024/01/02", "TX", "999999", "0", "2,000", "900"},
		{},
		{"2024/01/02", "TX", "999999", "1", "1,200", "300"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		if len(row) > 0 {
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}

	filePath := filepath.Join(tmpDir, "large-traders.xlsx")
	require.NoError(t, f.SaveAs(filePath))

	catalog := DefaultCatalog()
	table, err := ParseWorkbook(filePath, catalog.Dictionaries[domain.KindLargeTradersFutures])
	require.NoError(t, err)

	assert.Equal(t, "日期", table.Header[0])
	assert.Len(t, table.Rows, 2)

	record := NewEngine(catalog).Decompose(table, domain.KindLargeTradersFutures, queryDay)
	require.NotNil(t, record)
	assertDecimal(t, "800", record.Get("top5NonSpecificLongOi"))
}

func TestParseWorkbookNoHeader(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A1", "nothing here"))
	filePath := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, f.SaveAs(filePath))

	_, err := ParseWorkbook(filePath, DefaultCatalog().Dictionaries[domain.KindPutCallRatio])
	assert.Error(t, err)
}
