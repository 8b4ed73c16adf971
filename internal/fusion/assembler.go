// Package fusion decides how a rule-based and a model-generated candidate
// response combine into the response actually shown.
//
// The assembler owns no persistent state: it is a pure function of its
// request context plus one non-blocking cache read, and its failure mode is
// always the deterministic symbolic fallback.
package fusion

import (
	"go.uber.org/zap"
)

// #region assembler
// Assembler fuses symbolic and neural candidate responses using cached
// learned weights plus hard safety overrides.
type Assembler struct {
	weights WeightProvider
	config  Config
	log     *zap.SugaredLogger
}

// New creates an assembler over a weight provider.
func New(weights WeightProvider, config Config, log *zap.SugaredLogger) *Assembler {
	return &Assembler{weights: weights, config: config, log: log}
}
// #endregion assembler

// #region assemble
// Assemble produces the fused response for one request. It never lets a
// failure escape: any panic inside assembly is caught at this boundary and
// the safe symbolic result is returned instead.
func (a *Assembler) Assemble(ctx Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("fusion assembly failed, serving symbolic fallback", "panic", r)
			result = Result{
				FusedResponse:     ctx.Symbolic.Response,
				FusedConfidence:   ctx.Symbolic.Confidence,
				SymbolicWeight:    1.0,
				NeuralWeight:      0.0,
				PreservationScore: 0.0,
				Strategy:          StrategySymbolicFallback,
			}
		}
	}()

	contextType := classifyContext(ctx)
	learned := a.weights.GetWeights(contextType)
	symbolicWeight, neuralWeight := a.resolveWeights(ctx, learned.SymbolicWeight, learned.NeuralWeight)

	preservation := preservationScore(ctx.Symbolic.Response, ctx.Neural.Response, a.config.SentenceSimilarity)
	strategy := selectStrategy(ctx.Neural.Response, preservation, a.config)

	var fused string
	switch strategy {
	case StrategyNeuralEnhanced:
		fused = ctx.Neural.Response
	case StrategyWeightedBlend:
		fused = weightedBlend(ctx.Symbolic.Response, ctx.Neural.Response, symbolicWeight, a.config)
	default:
		fused = ctx.Symbolic.Response
	}

	a.log.Debugw("fusion assembled",
		"context_type", contextType,
		"strategy", strategy,
		"symbolic_weight", symbolicWeight,
		"neural_weight", neuralWeight,
		"preservation", preservation)

	return Result{
		FusedResponse:     fused,
		FusedConfidence:   ctx.Symbolic.Confidence*symbolicWeight + ctx.Neural.Confidence*neuralWeight,
		SymbolicWeight:    symbolicWeight,
		NeuralWeight:      neuralWeight,
		PreservationScore: preservation,
		Strategy:          strategy,
	}
}
// #endregion assemble

// #region resolve-weights
// resolveWeights applies the safety overrides on top of the learned weights.
// A failed validation dominates learning outright; low symbolic confidence
// only nudges.
func (a *Assembler) resolveWeights(ctx Context, symbolicWeight, neuralWeight float64) (float64, float64) {
	if !ctx.Validation.Validated || !ctx.Validation.ConstraintsOK {
		return a.config.SafetySymbolicWeight, 1.0 - a.config.SafetySymbolicWeight
	}
	if ctx.Symbolic.Confidence < a.config.LowSymbolicCutoff {
		symbolicWeight = symbolicWeight - 0.1
		if symbolicWeight < 0.5 {
			symbolicWeight = 0.5
		}
		neuralWeight = 1.0 - symbolicWeight
	}
	return symbolicWeight, neuralWeight
}
// #endregion resolve-weights
