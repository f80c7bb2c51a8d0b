package scraper

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	apperrors "twxcli/internal/errors"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// DecodeBig5 converts a Big5 body to UTF-8. Bodies that are already valid
// UTF-8 (including plain ASCII) are returned unchanged apart from a leading BOM.
func DecodeBig5(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	decoded, _, err := transform.Bytes(traditionalchinese.Big5.NewDecoder(), data)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to decode Big5 body", err)
	}
	return decoded, nil
}
