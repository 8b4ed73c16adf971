package fusion

import (
	"strings"
)

// #region sentences
// splitSentences splits text on sentence punctuation, dropping empty
// fragments and trimming whitespace.
func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
// #endregion sentences

// #region word-set
// wordSet lowercases and splits text, keeping only words longer than two
// characters. Short function words carry no topical signal.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}
// #endregion word-set

// #region similarity
// similarity computes the Jaccard word-overlap between two strings.
func similarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	intersection := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			intersection++
		}
	}
	union := len(wordsA) + len(wordsB) - intersection
	return float64(intersection) / float64(union)
}
// #endregion similarity

// #region preservation
// preservationScore is the fraction of symbolic sentences that survive in the
// neural response: a symbolic sentence counts as preserved when some neural
// sentence overlaps it above the threshold.
func preservationScore(symbolic, neural string, threshold float64) float64 {
	symbolicSentences := splitSentences(symbolic)
	neuralSentences := splitSentences(neural)
	if len(symbolicSentences) == 0 {
		return 0
	}

	preserved := 0
	for _, s := range symbolicSentences {
		for _, n := range neuralSentences {
			if similarity(s, n) > threshold {
				preserved++
				break
			}
		}
	}
	return float64(preserved) / float64(len(symbolicSentences))
}
// #endregion preservation
