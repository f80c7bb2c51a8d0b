package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"twxcli/internal/config"
	"twxcli/internal/shared/testutil"
	"twxcli/pkg/contracts/domain"
)

const kind = domain.KindTWSEMarginTransactions

func sampleRecords(t *testing.T) []*domain.OutputRecord {
	return []*domain.OutputRecord{
		testutil.Record(t, "2024-01-02", kind, "marginBalance", "1200", "shortBalance", "-35.5"),
		testutil.Record(t, "2024-01-03", kind, "marginBalance", "1250", "marginChange", "50"),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" CSV ", FormatCSV, false},
		{"Xlsx", FormatXLSX, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnsAndRows(t *testing.T) {
	records := sampleRecords(t)

	columns := Columns(records)
	assert.Equal(t, []string{"date", "marginBalance", "marginChange", "shortBalance"}, columns)

	rows := Rows(records, columns)
	assert.Equal(t, [][]string{
		{"2024-01-02", "1200", "", "-35.5"},
		{"2024-01-03", "1250", "50", ""},
	}, rows)
}

func TestWriteCSV(t *testing.T) {
	t.Run("with BOM", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, sampleRecords(t), true))

		assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
		rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "date", rows[0][0])
		assert.Equal(t, "-35.5", rows[1][3])
	})

	t.Run("empty input still has a header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, nil, false))
		assert.Equal(t, "date\n", buf.String())
	})
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords(t), string(kind)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{string(kind)}, f.GetSheetList())
	rows, err := f.GetRows(string(kind))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "marginBalance", "marginChange", "shortBalance"}, rows[0])
	assert.Equal(t, "2024-01-03", rows[2][0])
	assert.Equal(t, "50", rows[2][2])

	value, err := f.GetCellValue(string(kind), "D2")
	require.NoError(t, err)
	assert.Equal(t, "-35.5", value)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRecords(t)))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "2024-01-02", decoded[0]["date"])
	assert.Equal(t, 1200.0, decoded[0]["marginBalance"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExporterExportFile(t *testing.T) {
	dir := t.TempDir()
	logger, logs := testutil.NewTestLogger(t)
	exp := New(&config.Paths{ExportsDir: filepath.Join(dir, "exports")}, config.ExportConfig{BOM: false}, logger)

	t.Run("default location", func(t *testing.T) {
		path, err := exp.ExportFile("", sampleRecords(t), FormatCSV, kind, "2024-01-02", "2024-01-03")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(dir, "exports", "twse-margin-transactions_2024-01-02_2024-01-03.csv"), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "2024-01-03,1250,50,")
		assert.True(t, logs.ContainsMessage("Export written"))
	})

	t.Run("explicit path", func(t *testing.T) {
		target := filepath.Join(dir, "out", "margin.xlsx")
		path, err := exp.ExportFile(target, sampleRecords(t), FormatXLSX, kind, "2024-01-02", "")
		require.NoError(t, err)
		assert.Equal(t, target, path)
		assert.True(t, config.FileExists(target))
	})

	t.Run("failed write removes the file", func(t *testing.T) {
		target := filepath.Join(dir, "x.pdf")
		_, err := exp.ExportFile(target, sampleRecords(t), Format("pdf"), kind, "2024-01-02", "")
		assert.Error(t, err)
		assert.NoFileExists(t, target)
	})
}
