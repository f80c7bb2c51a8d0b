package exporter

import (
	"encoding/json"
	"io"

	"twxcli/pkg/contracts/domain"
)

// WriteJSON writes records as an indented JSON array of flat objects.
func WriteJSON(w io.Writer, records []*domain.OutputRecord) error {
	if records == nil {
		records = []*domain.OutputRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
