package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scorer rates the similarity of two names on a 0..1 scale
type Scorer func(a, b string) float64

// name suffixes that rankings and the catalog disagree on ("Jr.", "II", ...)
var suffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
}

// characters removed outright rather than splitting a token
var elided = map[rune]bool{
	'\'': true, '\u2019': true, '\u2018': true, '\u02bc': true, '`': true, '.': true,
}

// FoldName lower-cases a name and collapses whitespace. It is the key for exact matching.
func FoldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeName folds a name for fuzzy comparison. It lower-cases, strips accents,
// deletes apostrophes and periods so "D'Andre" and "D.J." fold to "dandre" and "dj",
// and turns any other punctuation into a token break. Generational suffixes are dropped.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r):
			return r
		case elided[r]:
			return -1
		}
		return ' '
	}, folded)

	tokens := strings.Fields(cleaned)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !suffixes[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// LastName returns the final normalized token of a name
func LastName(name string) string {
	tokens := strings.Fields(NormalizeName(name))
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// TokenSortRatio compares two names independent of token order: both are normalized,
// their tokens sorted and rejoined, and the edit distance scaled by the longer length.
func TokenSortRatio(a, b string) float64 {
	sa := sortedTokens(a)
	sb := sortedTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 1
	}

	longest := len([]rune(sa))
	if n := len([]rune(sb)); n > longest {
		longest = n
	}
	dist := levenshtein.ComputeDistance(sa, sb)
	return 1 - float64(dist)/float64(longest)
}

func sortedTokens(name string) string {
	tokens := strings.Fields(NormalizeName(name))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
