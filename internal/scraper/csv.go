package scraper

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	apperrors "twxcli/internal/errors"
	"twxcli/pkg/contracts/domain"
)

// ReadCSV splits a UTF-8 CSV body into a table. The first non-blank record is
// the header. Ragged rows are kept as they are; blank rows are dropped.
func ReadCSV(data []byte) (domain.Table, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var table domain.Table
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, apperrors.NewParsingError("failed to read CSV", err)
		}

		cells := trimCells(record)
		if isBlank(cells) {
			continue
		}
		if table.Header == nil {
			table.Header = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func trimCells(record []string) []string {
	cells := make([]string, len(record))
	for i, c := range record {
		cells[i] = strings.TrimSpace(c)
	}
	// exports often end every line with a trailing comma
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
