// Package resolve normalizes dish names into lookup keys and joins local
// dish records to spreadsheet rows.
package resolve

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/dish-catalog/internal/model"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9-]`)
)

// foldAccents decomposes letters and drops combining marks, so "ê" becomes
// "e" and "ñ" becomes "n". Letters with no decomposition pass through.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func slug(s string) string {
	s = strings.TrimSpace(s)
	s = whitespaceRe.ReplaceAllString(s, "-")
	return disallowedRe.ReplaceAllString(s, "")
}

// Normalize turns free text into a DishKey:
//  1. Lower-casing
//  2. Folding accented letters to their base letter
//  3. Replacing whitespace runs with a single hyphen
//  4. Dropping anything outside [a-z0-9-]
//
// Normalize is total and idempotent.
func Normalize(text string) model.DishKey {
	return model.DishKey(slug(foldAccents(strings.ToLower(text))))
}

// Literal is Normalize without accent folding: accented letters are dropped
// rather than transliterated ("Crêpes" -> "crpes").
func Literal(text string) model.DishKey {
	return model.DishKey(slug(strings.ToLower(text)))
}

// JoinKey builds the catalog key for a dish, name before country.
func JoinKey(name, country string) model.DishKey {
	return joinKeys(Normalize(name), Normalize(country))
}

func joinKeys(name, country model.DishKey) model.DishKey {
	if name == "" || country == "" {
		return ""
	}
	return name + "-" + country
}
