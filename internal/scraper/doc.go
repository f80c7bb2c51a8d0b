// Package scraper downloads exchange reports and decodes them into
// domain.Table values: Big5 CSV from TAIFEX, JSON from TWSE and TPEx and the
// HTML securities directory from the ISIN site.
package scraper
