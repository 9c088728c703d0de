package classify

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/models"
	"github.com/finsift/finsift/internal/normalize"
)

// candidate is one potential classification produced by the matcher, carrying
// enough evidence for the scorer to break ties deterministically.
type candidate struct {
	category models.Category
	method   models.Method
	term     string
	hits     int // distinct keywords matched for this category
	first    int // token index of the leftmost hit
}

// matchOverride checks the exact-phrase overrides. The whole normalized text
// must equal the normalized phrase; partial containment never triggers an
// override.
func matchOverride(text normalize.Text, cat *catalog.Catalog) (candidate, bool) {
	c, ok := cat.Override(text)
	if !ok {
		return candidate{}, false
	}
	return candidate{category: c, method: models.MethodOverride, term: text.String()}, true
}

// matchKeywords scans every category's keywords against the token stream.
// A keyword matches only as a whole token (or a contiguous token sequence for
// multi-word keywords); substrings of longer tokens never match, so "rent"
// stays quiet inside "parent". One candidate is returned per category that
// scored at least one hit, in catalog declaration order.
func matchKeywords(tokens []string, cat *catalog.Catalog) []candidate {
	var out []candidate
	for _, category := range cat.Categories() {
		var (
			hits  int
			first = -1
			term  string
		)
		for _, kw := range cat.Keywords(category) {
			idx, ok := findTokenSeq(tokens, strings.Fields(kw), cat)
			if !ok {
				continue
			}
			hits++
			if first == -1 || idx < first {
				first = idx
				term = kw
			}
		}
		if hits > 0 {
			out = append(out, candidate{
				category: category,
				method:   models.MethodTokenMatch,
				term:     term,
				hits:     hits,
				first:    first,
			})
		}
	}
	return out
}

// findTokenSeq reports the earliest token index at which the keyword's token
// sequence appears contiguously. Single-token keywords skip stop-word
// positions so that catalog noise words ("payment", "pos") cannot carry a
// category on their own.
func findTokenSeq(tokens, kwTokens []string, cat *catalog.Catalog) (int, bool) {
	if len(kwTokens) == 0 || len(kwTokens) > len(tokens) {
		return 0, false
	}
	for i := 0; i+len(kwTokens) <= len(tokens); i++ {
		if len(kwTokens) == 1 && cat.IsStopWord(tokens[i]) {
			continue
		}
		matched := true
		for j := range kwTokens {
			if tokens[i+j] != kwTokens[j] {
				matched = false
				break
			}
		}
		if matched {
			return i, true
		}
	}
	return 0, false
}

// matchRefund looks for a refund/reversal marker token. Markers are judged on
// the text alone; the transaction amount is never consulted.
func matchRefund(tokens []string, cat *catalog.Catalog) (candidate, bool) {
	for i, tok := range tokens {
		if cat.IsRefundMarker(tok) {
			return candidate{
				category: cat.DefaultCategory(),
				method:   models.MethodRefundMarker,
				term:     tok,
				hits:     1,
				first:    i,
			}, true
		}
	}
	return candidate{}, false
}

// fuzzyMinLen guards against short tokens, where a single edit flips
// the word into something unrelated.
const fuzzyMinLen = 4

// matchFuzzy finds the best near-miss between a token and a single-word
// keyword using Levenshtein similarity. Ties on similarity fall to the
// leftmost token, then to catalog declaration order, keeping the result
// stable across runs.
func matchFuzzy(tokens []string, cat *catalog.Catalog, threshold float64) (candidate, bool) {
	best := candidate{first: -1}
	bestSim := 0.0
	for _, category := range cat.Categories() {
		for _, kw := range cat.Keywords(category) {
			if strings.ContainsRune(kw, ' ') || len(kw) < fuzzyMinLen {
				continue
			}
			for i, tok := range tokens {
				if len(tok) < fuzzyMinLen || cat.IsStopWord(tok) {
					continue
				}
				sim := similarity(tok, kw)
				if sim < threshold {
					continue
				}
				if sim > bestSim || (sim == bestSim && best.first != -1 && i < best.first) {
					bestSim = sim
					best = candidate{
						category: category,
						method:   models.MethodFuzzyMatch,
						term:     kw,
						hits:     1,
						first:    i,
					}
				}
			}
		}
	}
	if best.first == -1 {
		return candidate{}, false
	}
	return best, true
}

// similarity maps Levenshtein distance onto [0,1], where 1 is an exact match.
func similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
