package fusion

import (
	"math"
	"strings"
)

// #region blacklist
// therapeuticBlacklist lists generic therapeutic-sounding fillers. A neural
// response containing any of them is vetoed outright, whatever its
// preservation score.
var therapeuticBlacklist = []string{
	"het is begrijpelijk",
	"veel mensen ervaren",
	"ik hoor dat je",
	"dat moet moeilijk zijn",
	"neem gerust de tijd",
	"het is oké om",
	"ik begrijp dat",
	"therapeutisch",
	"validatie",
}

// hasForbiddenPhrase reports whether the neural response contains a
// blacklisted phrase.
func hasForbiddenPhrase(neural string) bool {
	lower := strings.ToLower(neural)
	for _, phrase := range therapeuticBlacklist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
// #endregion blacklist

// #region select-strategy
// selectStrategy picks the fusion strategy. Veto checks run first, then
// preservation bands, in fixed priority order:
//  1. blacklisted phrase        → symbolic_fallback
//  2. long and loosely related  → symbolic_fallback
//  3. high preservation         → neural_enhanced
//  4. partial preservation      → weighted_blend
//  5. otherwise                 → symbolic_fallback
func selectStrategy(neural string, preservation float64, cfg Config) Strategy {
	if hasForbiddenPhrase(neural) {
		return StrategySymbolicFallback
	}
	if len(neural) > cfg.MaxNeuralLength && preservation > cfg.LongPreservation {
		return StrategySymbolicFallback
	}
	if preservation > cfg.HighPreservation {
		return StrategyNeuralEnhanced
	}
	if preservation > cfg.MinPreservation {
		return StrategyWeightedBlend
	}
	return StrategySymbolicFallback
}
// #endregion select-strategy

// #region weighted-blend
// weightedBlend keeps the first ceil(n * symbolicWeight) symbolic sentences
// as the core, then appends neural sentences that do not duplicate any kept
// core sentence, capped at MaxNeuralAdditions. Trailing punctuation is
// normalized.
func weightedBlend(symbolic, neural string, symbolicWeight float64, cfg Config) string {
	symbolicSentences := splitSentences(symbolic)
	neuralSentences := splitSentences(neural)

	coreCount := int(math.Ceil(float64(len(symbolicSentences)) * symbolicWeight))
	if coreCount > len(symbolicSentences) {
		coreCount = len(symbolicSentences)
	}
	core := symbolicSentences[:coreCount]

	var additions []string
	for _, n := range neuralSentences {
		if len(additions) >= cfg.MaxNeuralAdditions {
			break
		}
		duplicate := false
		for _, s := range core {
			if similarity(s, n) > cfg.SentenceSimilarity {
				duplicate = true
				break
			}
		}
		if !duplicate {
			additions = append(additions, n)
		}
	}

	blended := strings.TrimSpace(strings.Join(append(append([]string{}, core...), additions...), ". "))
	if blended == "" {
		return blended
	}
	if !strings.HasSuffix(blended, ".") {
		blended += "."
	}
	return blended
}
// #endregion weighted-blend
