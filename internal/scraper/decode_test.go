package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
)

func big5(t *testing.T, s string) []byte {
	t.Helper()
	b, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestDecodeBig5(t *testing.T) {
	text := "日期,交易人類別\n2024/01/02,0\n"

	decoded, err := DecodeBig5(big5(t, text))

	require.NoError(t, err)
	assert.Equal(t, text, string(decoded))
}

func TestDecodeBig5PassesUTF8Through(t *testing.T) {
	decoded, err := DecodeBig5([]byte("\xef\xbb\xbf日期,a"))

	require.NoError(t, err)
	assert.Equal(t, "日期,a", string(decoded))
}
