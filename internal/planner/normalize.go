package planner

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nameStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Stroked and ligature letters have no combining-mark decomposition, so the
// NFD pass leaves them intact. Folded explicitly.
var strokedFolder = strings.NewReplacer(
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ß", "ss",
)

// NormalizeName produces the canonical identity key for a player name:
// diacritics stripped, lowercased, whitespace collapsed. "Sørloth" and
// "sorloth " resolve to the same key.
func NormalizeName(name string) string {
	stripped, _, err := transform.String(nameStripper, name)
	if err != nil {
		stripped = name
	}
	stripped = strokedFolder.Replace(stripped)
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// NormalizePercent defensively converts a percentage that may arrive on
// either historical scale (0-100 or 0-10000) onto the canonical 0-100 scale.
// The conversion is idempotent: values already in range pass through.
func NormalizePercent(v float64) float64 {
	if v > 100 {
		v = v / 100.0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NormalizeSharpness converts sharpness input on either scale onto the
// internal 0-10000 scale used by the state simulator.
func NormalizeSharpness(v float64) float64 {
	if v <= 100 {
		v = v * 100.0
	}
	if v < 0 {
		return 0
	}
	if v > 10000 {
		return 10000
	}
	return v
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
