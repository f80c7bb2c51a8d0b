// Package exporter writes decomposed report records as JSON, CSV or XLSX.
//
// Every format shares one layout: a "date" column followed by the sorted union
// of the records' field names, one row per trading day. CSV output can carry
// a UTF-8 byte order mark so spreadsheet applications detect the encoding.
//
//	exp := exporter.New(paths, cfg.Export, logger)
//	path, err := exp.ExportFile("", records, exporter.FormatCSV, kind, "2024-01-02", "2024-01-31")
package exporter
