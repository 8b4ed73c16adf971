// Package feedback decodes feedback events from the upstream review and
// self-learning subsystems and routes them to the calibrator.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/calibrator"
)

// #region router
// Router validates and dispatches feedback events.
type Router struct {
	learner Learner
}

// NewRouter creates a router over a learner.
func NewRouter(learner Learner) *Router {
	return &Router{learner: learner}
}
// #endregion router

// #region dispatch
// DispatchLine decodes a single JSON feedback line and dispatches it.
// Malformed events are rejected before they reach the learner.
func (r *Router) DispatchLine(ctx context.Context, line []byte) error {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return fmt.Errorf("decode feedback event: %w", err)
	}
	return r.Dispatch(ctx, ev)
}

// Dispatch validates an event and hands it to the learner.
func (r *Router) Dispatch(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case "hitl":
		if ev.HITL == nil {
			return fmt.Errorf("hitl event missing payload")
		}
		status := calibrator.Status(ev.HITL.Status)
		switch status {
		case calibrator.StatusApproved, calibrator.StatusRejected, calibrator.StatusOverride:
		default:
			return fmt.Errorf("unknown hitl status %q", ev.HITL.Status)
		}
		if ev.HITL.Context.ContextType == "" {
			return fmt.Errorf("hitl event missing context type")
		}
		r.learner.LearnFromHITL(ctx, ev.HITL.ItemID, status, ev.HITL.Context)
		return nil

	case "reflection":
		if ev.Reflection == nil {
			return fmt.Errorf("reflection event missing payload")
		}
		if ev.Reflection.TriggerType == "" {
			return fmt.Errorf("reflection event missing trigger type")
		}
		r.learner.LearnFromReflection(ctx, calibrator.ReflectionLog{
			TriggerType:       ev.Reflection.TriggerType,
			NewSeedsGenerated: ev.Reflection.NewSeedsGenerated,
			LearningImpact:    ev.Reflection.LearningImpact,
		})
		return nil

	default:
		return fmt.Errorf("unknown feedback kind %q", ev.Kind)
	}
}
// #endregion dispatch
