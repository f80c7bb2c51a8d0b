package dataprocessing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain integer", "1234", "1234"},
		{"thousands separators", "1,234,567", "1234567"},
		{"surrounding whitespace", "  42  ", "42"},
		{"decimal", "17,000.55", "17000.55"},
		{"explicit plus", "+5.5", "5.5"},
		{"negative", "-120.5", "-120.5"},
		{"parenthesized negative", "(300)", "-300"},
		{"percent sign", "12.5%", "12.5"},
		{"byte order mark", "\ufeff99", "99"},
		{"empty", "", "0"},
		{"blank", "   ", "0"},
		{"dashes", "--", "0"},
		{"text", "N/A", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestNormalizePercent(t *testing.T) {
	assertDecimal(t, "1.205", NormalizePercent("120.5"))
	assertDecimal(t, "0.8", NormalizePercent("80%"))
	assertDecimal(t, "0", NormalizePercent(""))
}

func TestNormalizeIdempotent(t *testing.T) {
	fromText := Normalize("1234")
	fromInt := Normalize(1234)

	assertDecimal(t, "1234", fromText)
	assertDecimal(t, "1234", fromInt)
	assert.True(t, fromText.Equal(Normalize(fromText)))
	assert.True(t, Normalize(Normalize(fromText.String())).Equal(fromText))
}

func TestNormalizeTypes(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"nil", nil, "0"},
		{"int64", int64(-7), "-7"},
		{"float64", 1.5, "1.5"},
		{"json number", json.Number("2,000"), "2000"},
		{"decimal", decimal.NewFromInt(9), "9"},
		{"unsupported", struct{}{}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeField(t *testing.T) {
	dict := NewFieldDictionary(map[string]string{"比率%": "ratio", "量": "volume"}, "ratio")
	fields := map[string]string{"ratio": "120.5", "volume": "1,000"}

	assertDecimal(t, "1.205", NormalizeField(fields, "ratio", dict))
	assertDecimal(t, "1000", NormalizeField(fields, "volume", dict))
	assertDecimal(t, "0", NormalizeField(fields, "missing", dict))
}
