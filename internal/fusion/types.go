package fusion

import (
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region strategy
// Strategy names how the fused response was produced.
type Strategy string

const (
	StrategyNeuralEnhanced   Strategy = "neural_enhanced"   // neural response used verbatim
	StrategyWeightedBlend    Strategy = "weighted_blend"    // symbolic core plus neural additions
	StrategySymbolicFallback Strategy = "symbolic_fallback" // symbolic response used verbatim
)
// #endregion strategy

// #region context-types
// Context types partition the learned weights. Classification picks one per
// request; the calibrator and cache key on the same strings.
const (
	ContextCrisis         = "crisis"
	ContextLowConfidence  = "low_confidence"
	ContextHighConfidence = "high_confidence"
	ContextGreeting       = "greeting"
	ContextNormal         = "normal"
)
// #endregion context-types

// #region fusion-context
// SymbolicCandidate is the rule-based response with its generator metadata.
type SymbolicCandidate struct {
	Response   string   `json:"response"`
	Emotion    string   `json:"emotion"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources,omitempty"`
}

// NeuralCandidate is the model-generated response with its generator metadata.
type NeuralCandidate struct {
	Response       string  `json:"response"`
	Confidence     float64 `json:"confidence"`
	ProcessingPath string  `json:"processing_path"`
}

// ValidationSignal is the upstream constraint check result for the neural
// candidate. TDScore is optional; classification assumes 0.5 when absent.
type ValidationSignal struct {
	Validated     bool     `json:"validated"`
	ConstraintsOK bool     `json:"constraints_ok"`
	TDScore       *float64 `json:"td_score,omitempty"`
}

// Profile carries the optional per-user metadata used only for context
// classification.
type Profile struct {
	Agency float64 `json:"agency"`
}

// Context bundles everything the assembler needs for one request.
// Request-scoped, never persisted.
type Context struct {
	Symbolic   SymbolicCandidate `json:"symbolic"`
	Neural     NeuralCandidate   `json:"neural"`
	Validation ValidationSignal  `json:"validation"`
	Profile    *Profile          `json:"profile,omitempty"`
}
// #endregion fusion-context

// #region fusion-result
// Result is what the assembler hands back to the response pipeline.
type Result struct {
	FusedResponse     string   `json:"fused_response"`
	FusedConfidence   float64  `json:"fused_confidence"`
	SymbolicWeight    float64  `json:"symbolic_weight"`
	NeuralWeight      float64  `json:"neural_weight"`
	PreservationScore float64  `json:"preservation_score"`
	Strategy          Strategy `json:"strategy"`
}
// #endregion fusion-result

// #region weight-provider
// WeightProvider abstracts the weight cache so the assembler can be tested in
// isolation. Implementations must never block on storage.
type WeightProvider interface {
	GetWeights(contextType string) store.WeightProfile
}
// #endregion weight-provider

// #region config
// Config holds the fusion decision thresholds.
type Config struct {
	HighPreservation     float64 // above this, use neural verbatim
	MinPreservation      float64 // above this, blend; below, symbolic fallback
	LongPreservation     float64 // long neural responses above this are still rejected
	MaxNeuralLength      int     // neural responses longer than this are suspect
	SentenceSimilarity   float64 // Jaccard threshold for sentence-level matches
	MaxNeuralAdditions   int     // cap on neural sentences added in a blend
	SafetySymbolicWeight float64 // forced symbolic weight on validation failure
	LowSymbolicCutoff    float64 // symbolic confidence below this nudges weights
}

// DefaultConfig returns the production fusion thresholds.
func DefaultConfig() Config {
	return Config{
		HighPreservation:     0.7,
		MinPreservation:      0.4,
		LongPreservation:     0.5,
		MaxNeuralLength:      120,
		SentenceSimilarity:   0.6,
		MaxNeuralAdditions:   2,
		SafetySymbolicWeight: 0.9,
		LowSymbolicCutoff:    0.6,
	}
}
// #endregion config
