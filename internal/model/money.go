package model

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var moneyPrinter = message.NewPrinter(language.BrazilianPortuguese)

// ParseMoneyToCents parses a free-form money string ("12,90", "R$ 1.234,56",
// "12.90") into integer cents. A comma, when present, is the decimal
// separator and dots are grouping; otherwise a trailing dot group of up
// to two digits is the decimal part. Unparseable input yields 0, matching
// the forgiving behavior the cart form relies on.
func ParseMoneyToCents(value string) int64 {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, value)
	if cleaned == "" {
		return 0
	}

	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	var whole, fraction string
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		whole, fraction, _ = strings.Cut(cleaned, ",")
		fraction = strings.ReplaceAll(fraction, ",", "")
	} else if i := strings.LastIndex(cleaned, "."); i >= 0 && len(cleaned)-i-1 <= 2 {
		whole = strings.ReplaceAll(cleaned[:i], ".", "")
		fraction = cleaned[i+1:]
	} else {
		whole = strings.ReplaceAll(cleaned, ".", "")
	}

	cents := parseDigits(whole)*100 + parseDigits(padFraction(fraction, 2))
	if negative {
		return -cents
	}
	return cents
}

// FormatCents renders cents as pt-BR currency: 123456 -> "R$ 1.234,56".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := moneyPrinter.Sprintf("%v", number.Decimal(cents/100))
	return fmt.Sprintf("%sR$ %s,%02d", sign, whole, cents%100)
}

// ParseQuantityToThousandths parses a decimal quantity ("1,5", "0.25")
// into integer thousandths. Unparseable input yields 0.
func ParseQuantityToThousandths(value string) int64 {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			return r
		}
		return -1
	}, strings.ReplaceAll(value, ",", "."))
	if cleaned == "" {
		return 0
	}
	whole, fraction, _ := strings.Cut(cleaned, ".")
	fraction = strings.ReplaceAll(fraction, ".", "")
	return parseDigits(whole)*1000 + parseDigits(padFraction(fraction, 3))
}

// FormatQuantity renders thousandths as a pt-BR decimal with trailing
// zeros trimmed: 1500 -> "1,5", 2000 -> "2".
func FormatQuantity(thousandths int64) string {
	sign := ""
	if thousandths < 0 {
		sign = "-"
		thousandths = -thousandths
	}
	whole := thousandths / 1000
	fraction := strings.TrimRight(fmt.Sprintf("%03d", thousandths%1000), "0")
	if fraction == "" {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	return fmt.Sprintf("%s%d,%s", sign, whole, fraction)
}

// CalculateTotalCents computes a line total: round(price * quantity / 1000).
// Deterministic integer arithmetic; one whole unit (1000 thousandths)
// costs exactly the unit price.
func CalculateTotalCents(unitPriceCents, quantityThousandths int64) int64 {
	product := unitPriceCents * quantityThousandths
	if product < 0 {
		return -((-product + 500) / 1000)
	}
	return (product + 500) / 1000
}

func parseDigits(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func padFraction(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat("0", width-len(s))
}
