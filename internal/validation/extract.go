package validation

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarks = strings.NewReplacer("€", "", "$", "", "EUR", "", "eur", "", " ", "", "\u00a0", "", "'", "")

// ParseCell extracts a numeric fee from a table cell. Numbers are taken as
// is; strings may carry currency symbols, thousands separators and a decimal
// comma ("€1.234,50", "1,234.50", "3,00"). Thousands are only recognised
// when both separators appear or one repeats.
func ParseCell(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		return ParseCell(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case string:
		return parseAmount(x)
	}
	return decimal.Zero, false
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = currencyMarks.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}
	s = normalizeSeparators(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// normalizeSeparators rewrites s so that "." is the only decimal separator
// and thousands separators are gone. A lone "," or "." is always the decimal
// separator, so "2,500" and "2.500" both read as 2.5; a repeated one is a
// thousands separator.
func normalizeSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		// The separator appearing last is the decimal one.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		return strings.Replace(s, ",", ".", 1)
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
