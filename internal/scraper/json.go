package scraper

import (
	"bytes"
	"encoding/json"
	"strings"

	apperrors "twxcli/internal/errors"
	"twxcli/pkg/contracts/domain"
)

// jsonTable is one table of a TWSE or TPEx JSON response.
type jsonTable struct {
	Title   string          `json:"title"`
	Fields  []string        `json:"fields"`
	Data    [][]interface{} `json:"data"`
	Summary [][]interface{} `json:"summary"`
}

// TableSelector picks one table out of a multi-table response. The zero
// value takes the first table carrying data rows.
type TableSelector struct {
	// Title selects the first table whose title contains it.
	Title string
	// Summary reads the table's summary rows instead of its data rows.
	Summary bool
}

func (s TableSelector) matches(t jsonTable) bool {
	if s.Title != "" && !strings.Contains(t.Title, s.Title) {
		return false
	}
	return len(s.rows(t)) > 0
}

func (s TableSelector) rows(t jsonTable) [][]interface{} {
	if s.Summary {
		return t.Summary
	}
	return t.Data
}

// jsonEnvelope covers both the flat {stat, fields, data} and the
// {stat, tables: [...]} response shapes.
type jsonEnvelope struct {
	Stat   string          `json:"stat"`
	Fields []string        `json:"fields"`
	Data   [][]interface{} `json:"data"`
	Tables []jsonTable     `json:"tables"`
}

// ReadTWSEJSON converts a TWSE/TPEx JSON response into a table. A stat other
// than OK means the exchange has nothing for the requested day and yields an
// empty table without error.
func ReadTWSEJSON(data []byte) (domain.Table, error) {
	return ReadTWSEJSONTable(data, TableSelector{})
}

// ReadTWSEJSONTable is ReadTWSEJSON reading the table chosen by sel. The flat
// envelope is only used by the zero selector.
func ReadTWSEJSONTable(data []byte, sel TableSelector) (domain.Table, error) {
	decoder := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	decoder.UseNumber()

	var env jsonEnvelope
	if err := decoder.Decode(&env); err != nil {
		return domain.Table{}, apperrors.NewParsingError("failed to decode JSON response", err)
	}

	if env.Stat != "" && !strings.EqualFold(strings.TrimSpace(env.Stat), "OK") {
		return domain.Table{}, nil
	}

	if sel == (TableSelector{}) && len(env.Data) > 0 {
		return toTable(env.Fields, env.Data), nil
	}
	for _, t := range env.Tables {
		if sel.matches(t) {
			return toTable(t.Fields, sel.rows(t)), nil
		}
	}
	return domain.Table{}, nil
}

func toTable(fields []string, data [][]interface{}) domain.Table {
	table := domain.Table{
		Header: fields,
		Rows:   make([][]string, 0, len(data)),
	}
	for _, row := range data {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellText(v)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
