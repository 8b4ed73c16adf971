package fusion

// #region classify

// defaultTDScore is assumed when the validation signal carries no TD score.
const defaultTDScore = 0.5

// lowAgencyCutoff marks the crisis boundary on the optional agency score.
const lowAgencyCutoff = 0.3

// classifyContext resolves which weight partition a request belongs to.
// Checks run in fixed priority order; safety conditions win.
func classifyContext(ctx Context) string {
	if ctx.Profile != nil && ctx.Profile.Agency < lowAgencyCutoff {
		return ContextCrisis
	}
	if !ctx.Validation.Validated || !ctx.Validation.ConstraintsOK {
		return ContextCrisis
	}

	td := defaultTDScore
	if ctx.Validation.TDScore != nil {
		td = *ctx.Validation.TDScore
	}
	if td > 0.7 && ctx.Neural.Confidence < 0.6 {
		return ContextLowConfidence
	}

	if ctx.Neural.Confidence >= 0.8 && ctx.Symbolic.Confidence >= 0.7 {
		return ContextHighConfidence
	}

	if ctx.Symbolic.Emotion == "neutral" && ctx.Symbolic.Confidence > 0.9 {
		return ContextGreeting
	}

	return ContextNormal
}

// #endregion classify
