package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	editionParenPattern = regexp.MustCompile(`(?i)\(([^)]*(edition|remaster|remake|collection)[^)]*)\)`)
	editionPattern      = regexp.MustCompile(`(?i)\b(?:game of the year|goty|complete|definitive|ultimate|enhanced|deluxe|anniversary|royal|collection|remastered|remake)\b(?:\s+edition|\s+collection)?`)
	yearPattern         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// punctReplacer maps separator punctuation and bracket/quote characters to
// spaces. Hyphens and dashes split compound titles ("Half-Life" -> "half
// life") so that token matching lines up across storefronts.
var punctReplacer = strings.NewReplacer(
	":", " ",
	";", " ",
	",", " ",
	".", " ",
	"-", " ",
	"—", " ", // em dash
	"–", " ", // en dash
	"[", " ",
	"]", " ",
	"(", " ",
	")", " ",
	"\"", " ",
	"'", " ",
)

// asciiFold decomposes characters and drops combining marks, reducing
// accented letters to their ASCII base form.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle canonicalizes a raw game title into a lowercase matching
// key. The steps run in a fixed order because later steps assume earlier
// cleanup: trim, transliterate and lowercase, strip trademark glyphs, drop
// edition noise (parenthetical groups first, then bare tokens), drop
// standalone release years, flatten punctuation, collapse whitespace.
// The function is pure and total; empty input yields empty output.
func NormalizeTitle(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.NewReplacer("™", "", "®", "", "©", "").Replace(s)
	s = editionParenPattern.ReplaceAllString(s, " ")
	s = editionPattern.ReplaceAllString(s, " ")
	s = yearPattern.ReplaceAllString(s, " ")
	s = punctReplacer.Replace(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
