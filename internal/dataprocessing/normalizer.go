package dataprocessing

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeText parses localized numeric text such as "1,234", "+5",
// "(300)" or "12.5%". Empty or unparseable text yields zero; callers cannot
// tell a published zero from a missing value.
func NormalizeText(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// NormalizePercent parses a percentage and returns it as a fraction: "120.5" -> 1.205.
func NormalizePercent(s string) decimal.Decimal {
	return NormalizeText(s).Shift(-2)
}

// Normalize converts a raw cell of any supported type to a decimal. Values that
// are already numeric pass through unchanged.
func Normalize(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case string:
		return NormalizeText(x)
	case json.Number:
		return NormalizeText(x.String())
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case float64:
		return decimal.NewFromFloat(x)
	default:
		return decimal.Zero
	}
}

// NormalizeField reads a translated field, applying percent scaling when the
// dictionary marks the key as a percentage. Absent fields yield zero.
func NormalizeField(fields map[string]string, key string, dict FieldDictionary) decimal.Decimal {
	raw, ok := fields[key]
	if !ok {
		return decimal.Zero
	}
	if dict.IsPercent(key) {
		return NormalizePercent(raw)
	}
	return NormalizeText(raw)
}
