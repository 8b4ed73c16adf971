// Package calibrator turns sparse feedback signals into dampened weight
// adjustments behind a candidate/production promotion gate.
//
// Learning is best-effort: every store failure is logged and the event
// dropped. A lost feedback event is acceptable, a crashed request path is not.
package calibrator

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region trigger-contexts
// triggerContexts maps reflection trigger types to weight context types.
// Unmapped triggers fall back to "normal".
var triggerContexts = map[string]string{
	"low_confidence":         "low_confidence",
	"novel_topic":            "normal",
	"correction":             "normal",
	"crisis":                 "crisis",
	"hitl_override_learning": "normal",
}

// learningModeImpact is the fixed impact score attached to learning-mode
// diagnostic events so downstream consumers rank them high.
const learningModeImpact = 0.5
// #endregion trigger-contexts

// #region calibrator
// Calibrator adjusts fusion weights from HITL and reflection feedback.
type Calibrator struct {
	store  ProfileStore
	cache  Invalidator
	events EventSink
	config Config
	log    *zap.SugaredLogger
}

// New creates a calibrator. events may be nil (learning-mode triggers are
// then only logged).
func New(profiles ProfileStore, cache Invalidator, events EventSink, config Config, log *zap.SugaredLogger) *Calibrator {
	return &Calibrator{store: profiles, cache: cache, events: events, config: config, log: log}
}
// #endregion calibrator

// #region learn-hitl
// LearnFromHITL folds a human review outcome into the candidate profile for
// the event's context type. approved favors neural, rejected favors symbolic,
// override records a learning-mode event and never touches weights.
func (c *Calibrator) LearnFromHITL(ctx context.Context, itemID string, status Status, hctx HITLContext) {
	var dir direction
	switch status {
	case StatusApproved:
		dir = favorNeural
	case StatusRejected:
		dir = favorSymbolic
	case StatusOverride:
		c.triggerLearningMode(ctx, hctx)
		return
	default:
		c.log.Warnw("unknown HITL status, dropping event", "item_id", itemID, "status", status)
		return
	}

	c.log.Debugw("learning from HITL feedback",
		"item_id", itemID, "status", status, "context_type", hctx.ContextType, "direction", dir.String())
	c.applyShift(ctx, hctx.ContextType, dir, 1.0)
}
// #endregion learn-hitl

// #region learn-reflection
// LearnFromReflection folds a self-reflection event into the candidate
// profile. Events below the noise floor are skipped. New seeds mean the
// neural path explored successfully, so they favor neural.
func (c *Calibrator) LearnFromReflection(ctx context.Context, rlog ReflectionLog) {
	if rlog.LearningImpact < c.config.MinImpact {
		c.log.Debugw("reflection impact below noise floor, skipping",
			"trigger_type", rlog.TriggerType, "impact", rlog.LearningImpact)
		return
	}

	contextType, ok := triggerContexts[rlog.TriggerType]
	if !ok {
		contextType = "normal"
	}
	dir := favorSymbolic
	if rlog.NewSeedsGenerated > 0 {
		dir = favorNeural
	}

	c.log.Debugw("learning from reflection",
		"trigger_type", rlog.TriggerType, "context_type", contextType,
		"direction", dir.String(), "impact", rlog.LearningImpact)
	c.applyShift(ctx, contextType, dir, rlog.LearningImpact)
}
// #endregion learn-reflection

// #region apply-shift
// applyShift is the shared learning step: read production, compute the
// dampened candidate, persist it, and run the promotion check on the returned
// sample count. Every candidate write goes through the same promotion check
// regardless of which event type triggered it, so reflection-only context
// types promote too.
func (c *Calibrator) applyShift(ctx context.Context, contextType string, dir direction, impact float64) {
	ctx, cancel := context.WithTimeout(ctx, c.config.WriteTimeout)
	defer cancel()

	current, err := c.store.GetProduction(ctx, contextType)
	if errors.Is(err, store.ErrNotFound) {
		current = store.DefaultProfile(contextType)
	} else if err != nil {
		c.log.Warnw("calibration read failed, dropping event", "context_type", contextType, "error", err)
		return
	}

	candidate := dampenedShift(current, dir, impact, c.config)

	samples, err := c.store.SaveCandidate(ctx, candidate)
	if err != nil {
		c.log.Warnw("calibration write failed, dropping event", "context_type", contextType, "error", err)
		return
	}

	if samples >= c.config.MinSamplesForCommit {
		c.promote(ctx, contextType, samples)
	}
}
// #endregion apply-shift

// #region dampened-shift
// dampenedShift computes the next candidate profile. The favored weight moves
// by MaxShiftPerUpdate * impact * DampeningFactor, capped at MaxWeight; the
// complement is forced to 1 - favored so the sum-to-one invariant holds by
// construction.
func dampenedShift(current store.WeightProfile, dir direction, impact float64, cfg Config) store.WeightProfile {
	shift := cfg.MaxShiftPerUpdate * impact * cfg.DampeningFactor
	out := current

	if dir == favorNeural {
		neural := math.Min(cfg.MaxWeight, current.NeuralWeight+shift)
		out.NeuralWeight = neural
		out.SymbolicWeight = 1.0 - neural
	} else {
		symbolic := math.Min(cfg.MaxWeight, current.SymbolicWeight+shift)
		out.SymbolicWeight = symbolic
		out.NeuralWeight = 1.0 - symbolic
	}
	return out
}
// #endregion dampened-shift

// #region promote
// promote copies the candidate into production and invalidates the cache
// entry so subsequent reads pick up the new production value. Failure leaves
// the candidate pending; the next successful learning event retries
// implicitly.
func (c *Calibrator) promote(ctx context.Context, contextType string, samples int) {
	if err := c.store.Promote(ctx, contextType); err != nil {
		c.log.Warnw("candidate promotion failed, leaving pending", "context_type", contextType, "error", err)
		return
	}
	c.cache.Invalidate(contextType)
	c.log.Infow("candidate promoted to production", "context_type", contextType, "samples", samples)

	if c.events != nil {
		ev := logging.LearningEvent{
			TriggerType: "candidate_promoted",
			ContextType: contextType,
		}
		if err := c.events.Record(ctx, ev); err != nil {
			c.log.Warnw("failed to record promotion event", "context_type", contextType, "error", err)
		}
	}
}
// #endregion promote

// #region learning-mode
// triggerLearningMode records the high-impact diagnostic event emitted when a
// human override means both the symbolic and the neural path failed. No
// corrective weight action is taken; the signal waits for human correction.
func (c *Calibrator) triggerLearningMode(ctx context.Context, hctx HITLContext) {
	c.log.Warnw("learning mode triggered, both paths failed",
		"context_type", hctx.ContextType, "confidence", hctx.Confidence, "td_score", hctx.TDScore)

	if c.events == nil {
		return
	}
	detail, err := json.Marshal(map[string]interface{}{
		"contextType": hctx.ContextType,
		"confidence":  hctx.Confidence,
		"tdScore":     hctx.TDScore,
		"reason":      "both symbolic and neural pathways failed, manual override required",
	})
	if err != nil {
		c.log.Warnw("failed to encode learning mode context", "error", err)
		return
	}
	ev := logging.LearningEvent{
		TriggerType: "hitl_override_learning",
		ContextType: hctx.ContextType,
		ContextJSON: string(detail),
		NewSeeds:    0,
		Impact:      learningModeImpact,
	}
	if err := c.events.Record(ctx, ev); err != nil {
		c.log.Warnw("failed to record learning mode event", "context_type", hctx.ContextType, "error", err)
	}
}
// #endregion learning-mode
