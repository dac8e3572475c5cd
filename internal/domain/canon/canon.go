// Package canon normalises player names into comparable forms.
//
// Canonicalize produces the display-safe canonical form stored in roster
// "cleaned" fields. Key additionally folds case and diacritics and is what
// every comparison in the matcher runs on, so "José Ramírez" and
// "jose ramirez" share a key while keeping their own canonical spelling.
package canon

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// gluedInitial matches a single-letter initial whose period is directly
// followed by another letter, as in "A.Garcia" or "J.D.Martinez".
var gluedInitial = regexp.MustCompile(`(^|[\s.])(\pL)\.(\pL)`)

// Canonicalize rewrites raw into canonical form. It is pure, total and
// idempotent: "Last, First" becomes "First Last", whitespace collapses,
// each word is title-cased and single-letter initials lose their period.
func Canonicalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if i := strings.IndexByte(s, ','); i >= 0 {
		last := strings.TrimSpace(s[:i])
		first := strings.ReplaceAll(s[i+1:], ",", " ")
		s = strings.TrimSpace(first) + " " + last
	}

	for {
		next := gluedInitial.ReplaceAllString(s, "$1$2. $3")
		if next == s {
			break
		}
		s = next
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	// Casers keep state; one per call keeps Canonicalize safe for concurrent use.
	title := cases.Title(language.Und)
	for i, w := range words {
		w = title.String(w)
		if isDottedInitial(w) {
			w = strings.TrimSuffix(w, ".")
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

func isDottedInitial(w string) bool {
	if utf8.RuneCountInString(w) != 2 || !strings.HasSuffix(w, ".") {
		return false
	}
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLetter(r)
}

// Fold strips combining marks so accented letters compare equal to their
// base Latin letters. Letters without a decomposition (ø, ł) are unchanged.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key is the comparison key for a name: canonical, folded and lower-cased.
// Folding can leave stray or only whitespace behind (a name made of bare
// combining marks), so the result is re-collapsed and may be empty.
func Key(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(Fold(Canonicalize(raw)))), " ")
}

// Tokens splits the comparison key of raw into words.
func Tokens(raw string) []string {
	return strings.Fields(Key(raw))
}

// EqualFold reports whether a and b are equal ignoring case and diacritics,
// after trimming surrounding whitespace only.
func EqualFold(a, b string) bool {
	return strings.EqualFold(Fold(strings.TrimSpace(a)), Fold(strings.TrimSpace(b)))
}
