package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"twxcli/pkg/contracts/domain"
)

// utf8BOM lets Excel detect UTF-8 when opening the CSV directly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []*domain.OutputRecord, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	columns := Columns(records)
	writer := csv.NewWriter(w)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, row := range Rows(records, columns) {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
