package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"order-exporter/internal/orderexporter/data"
)

const euroSign = "€"

// Amount extracts a non-negative amount and its currency from a price text.
//
// Only digits, commas and periods are kept. When both separators occur the
// last one is the decimal separator. A lone separator kind occurring once is
// decimal unless exactly three digits follow it; occurring more than once it
// groups thousands. A leading separator is always the decimal point.
func Amount(text string) (decimal.Decimal, data.Currency, error) {
	currency := data.USD
	if strings.Contains(text, euroSign) {
		currency = data.EUR
	}

	cleaned := strings.Map(func(r rune) rune {
		if isDigit(r) || r == ',' || r == '.' {
			return r
		}
		return -1
	}, text)
	cleaned = strings.TrimRight(cleaned, ",.")
	if strings.IndexFunc(cleaned, isDigit) < 0 {
		return decimal.Zero, currency, &MalformedAmountError{Text: text}
	}

	var canonical string
	if fraction, ok := leadingFraction(cleaned); ok {
		canonical = fraction
	} else {
		canonical = canonicalSeparators(cleaned)
	}
	value, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, currency, fmt.Errorf("%w: %w", &MalformedAmountError{Text: text}, err)
	}
	return value, currency, nil
}

// leadingFraction reads ".99" and ",50" as fractions of one unit.
func leadingFraction(s string) (string, bool) {
	if s[0] != ',' && s[0] != '.' {
		return "", false
	}
	digits := strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, s)
	return "0." + digits, true
}

func canonicalSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return singleSeparator(s, ",")
	case lastDot >= 0:
		return singleSeparator(s, ".")
	}
	return s
}

func singleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	if len(s)-idx-1 == 3 {
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
