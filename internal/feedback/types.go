package feedback

import (
	"context"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/calibrator"
)

// #region learner-interface
// Learner abstracts the calibrator so the router can be tested without a
// store behind it.
type Learner interface {
	LearnFromHITL(ctx context.Context, itemID string, status calibrator.Status, hctx calibrator.HITLContext)
	LearnFromReflection(ctx context.Context, rlog calibrator.ReflectionLog)
}
// #endregion learner-interface

// #region events
// HITLEvent is the wire shape of a human-review outcome.
type HITLEvent struct {
	ItemID  string                 `json:"itemId"`
	Status  string                 `json:"status"`
	Context calibrator.HITLContext `json:"context"`
}

// ReflectionEvent is the wire shape of a self-reflection event.
type ReflectionEvent struct {
	TriggerType       string  `json:"trigger_type"`
	NewSeedsGenerated int     `json:"new_seeds_generated"`
	LearningImpact    float64 `json:"learning_impact"`
}

// Event is the envelope for a single feedback line. Exactly one of HITL or
// Reflection is set, selected by Kind.
type Event struct {
	Kind       string           `json:"kind"` // "hitl" | "reflection"
	HITL       *HITLEvent       `json:"hitl,omitempty"`
	Reflection *ReflectionEvent `json:"reflection,omitempty"`
}
// #endregion events
