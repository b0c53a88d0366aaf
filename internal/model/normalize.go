package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes and removes combining marks, so "Pilão"
// normalizes the same as "Pilao".
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ProductKey derives the deduplication key for a product from its name
// and optional brand: accents stripped, lowercased, non-alphanumeric
// runs collapsed to "-". The same product typed slightly differently on
// two devices lands on the same key, which is what price history and
// insights group by.
func ProductKey(name, brand string) string {
	joined := strings.TrimSpace(name)
	if brand = strings.TrimSpace(brand); brand != "" {
		joined += "|" + brand
	}

	flat, _, err := transform.String(stripAccents, joined)
	if err != nil {
		flat = joined
	}
	flat = strings.ToLower(flat)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range flat {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
