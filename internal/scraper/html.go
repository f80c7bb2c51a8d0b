package scraper

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "twxcli/internal/errors"
	"twxcli/pkg/contracts/domain"
)

// ReadHTMLTable extracts the first table matching selector. The first row
// becomes the header; rows without cells are skipped.
func ReadHTMLTable(data []byte, selector string) (domain.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return domain.Table{}, apperrors.NewParsingError("failed to parse HTML", err)
	}

	var table domain.Table
	doc.Find(selector).First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if table.Header == nil {
			table.Header = cells
			return
		}
		table.Rows = append(table.Rows, cells)
	})
	return table, nil
}
