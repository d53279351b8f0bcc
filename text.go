package thematic

import (
	"sort"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// stopwords are skipped when picking significant words out of names and definitions.
var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "being": {}, "from": {},
	"have": {}, "into": {}, "more": {}, "other": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "through": {}, "very": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {}, "with": {},
	"within": {}, "would": {}, "code": {}, "codes": {},
}

var titler = cases.Title(language.English)

// words splits s into lowercase alphanumeric runs, preserving order and duplicates.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenSet returns the unique words of s in first-seen order.
func tokenSet(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range words(s) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// overlapRatio is the shared-token count of two names divided by the larger
// token count. Names without tokens never overlap.
func overlapRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	in := make(map[string]struct{}, len(ta))
	for _, w := range ta {
		in[w] = struct{}{}
	}
	shared := 0
	for _, w := range tb {
		if _, ok := in[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(max(len(ta), len(tb)))
}

// slugify turns free text into a code name: lowercase words joined by underscores.
func slugify(s string) string {
	return strings.Join(words(s), "_")
}

// titleCase capitalizes each word of s.
func titleCase(s string) string {
	return titler.String(s)
}

// significant reports whether w is long enough and not a stopword.
func significant(w string) bool {
	if len(w) <= 3 {
		return false
	}
	_, stop := stopwords[w]
	return !stop
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// termCounter tallies terms and ranks them by count, ties broken by first sighting.
type termCounter struct {
	counts *orderedmap.OrderedMap[string, int]
}

func newTermCounter() *termCounter {
	return &termCounter{counts: orderedmap.New[string, int]()}
}

func (tc *termCounter) add(term string) {
	n, _ := tc.counts.Get(term)
	tc.counts.Set(term, n+1)
}

// top returns up to n terms with the highest counts.
func (tc *termCounter) top(n int) []string {
	type entry struct {
		term  string
		count int
	}
	ranked := make([]entry, 0, tc.counts.Len())
	for pair := tc.counts.Oldest(); pair != nil; pair = pair.Next() {
		ranked = append(ranked, entry{pair.Key, pair.Value})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, e := range ranked {
		out[i] = e.term
	}
	return out
}

// appendUnique appends values not already present in dst.
func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

// capStrings returns at most n leading values of s as a new slice.
func capStrings(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string(nil), s...)
}
