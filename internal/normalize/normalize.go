// Package normalize produces canonical neighborhood name keys for
// cross-dataset joins between listing KPIs and boundary polygons.
package normalize

import (
	"regexp"
	"strings"
)

// accentReplacer maps the Spanish/Catalan accented vowel variants and ñ to
// their ASCII base letters. Downstream joins depend on bit-for-bit equality
// of the canonical form, so the table is fixed rather than derived from a
// Unicode decomposition.
var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ä", "a", "â", "a",
	"é", "e", "è", "e", "ë", "e", "ê", "e",
	"í", "i", "ì", "i", "ï", "i", "î", "i",
	"ó", "o", "ò", "o", "ö", "o", "ô", "o",
	"ú", "u", "ù", "u", "ü", "u", "û", "u",
	"ñ", "n",
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// Name standardizes a free-text neighborhood name for matching by:
//  1. Lowercasing
//  2. Replacing accented vowel variants and ñ with base letters
//  3. Stripping every rune that is not a lowercase ASCII letter, digit, or space
//  4. Collapsing runs of whitespace and trimming
//
// The function is total and idempotent: it never fails, an empty string maps
// to an empty string, and Name(Name(s)) == Name(s) for every s.
func Name(s string) string {
	s = strings.ToLower(s)
	s = accentReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}

	s = multiSpaceRe.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(s)
}

// Key builds the cache/join key for a neighborhood within a city. The city
// component goes through the same canonicalization as the name.
func Key(city, name string) string {
	return Name(city) + "/" + Name(name)
}
