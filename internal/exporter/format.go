package exporter

import (
	"fmt"
	"sort"
	"strings"

	"twxcli/pkg/contracts/domain"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv or xlsx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Columns returns "date" followed by the sorted union of the records' field names.
func Columns(records []*domain.OutputRecord) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range records {
		for _, name := range r.FieldNames() {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return append([]string{"date"}, names...)
}

// Rows renders records against columns. Fields a record lacks are left empty.
func Rows(records []*domain.OutputRecord, columns []string) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, len(columns))
		row[0] = domain.DayKey(r.Date)
		for i, name := range columns[1:] {
			if v, ok := r.Fields[name]; ok {
				row[i+1] = v.String()
			}
		}
		rows = append(rows, row)
	}
	return rows
}
