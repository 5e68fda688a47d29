package util

import (
	"math"
	"strings"
	"unicode"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// NormalizeCity lowercases a city name and collapses every run of
// whitespace or hyphens into a single hyphen, so "New  York", "new york"
// and "NEW-YORK" all map to "new-york".
func NormalizeCity(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	var b strings.Builder
	pendingSep := false
	for _, r := range city {
		if unicode.IsSpace(r) || r == '-' {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}
