package dataprocessing

import (
	"strings"

	"twxcli/pkg/contracts/domain"
)

// Translate maps one raw row onto canonical keys using the header labels.
// Columns the dictionary does not know are dropped.
func Translate(header, row []string, dict FieldDictionary) map[string]string {
	return translateRow(columnKeys(header, dict), row)
}

// TranslateTable translates every data row of a table.
func TranslateTable(table domain.Table, dict FieldDictionary) []map[string]string {
	keys := columnKeys(table.Header, dict)
	rows := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, translateRow(keys, row))
	}
	return rows
}

// columnKeys resolves each header column to its canonical key ("" when unknown).
// When two columns share a key the first one wins.
func columnKeys(header []string, dict FieldDictionary) []string {
	keys := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, label := range header {
		key, ok := dict.Key(label)
		if !ok || seen[key] {
			continue
		}
		keys[i] = key
		seen[key] = true
	}
	return keys
}

func translateRow(keys []string, row []string) map[string]string {
	fields := make(map[string]string, len(keys))
	for i, key := range keys {
		if key == "" || i >= len(row) {
			continue
		}
		fields[key] = strings.TrimSpace(row[i])
	}
	return fields
}
