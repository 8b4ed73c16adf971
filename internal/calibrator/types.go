package calibrator

import (
	"context"
	"time"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region status
// Status is the outcome of a human review of a fused response.
type Status string

const (
	StatusApproved Status = "approved" // neural candidate held up, favor neural
	StatusRejected Status = "rejected" // neural candidate failed, favor symbolic
	StatusOverride Status = "override" // both paths failed, human rewrote the response
)
// #endregion status

// #region events
// HITLContext carries the review context attached to a HITL event.
type HITLContext struct {
	ContextType string  `json:"contextType"`
	Confidence  float64 `json:"confidence"`
	TDScore     float64 `json:"tdScore"`
}

// ReflectionLog is a self-reflection event from the self-learning subsystem.
type ReflectionLog struct {
	TriggerType       string  `json:"trigger_type"`
	NewSeedsGenerated int     `json:"new_seeds_generated"`
	LearningImpact    float64 `json:"learning_impact"`
}
// #endregion events

// #region direction
// direction says which weight a learning event favors.
type direction int

const (
	favorNeural direction = iota
	favorSymbolic
)

func (d direction) String() string {
	if d == favorNeural {
		return "neural"
	}
	return "symbolic"
}
// #endregion direction

// #region interfaces
// ProfileStore is the slice of the parameter store the calibrator needs.
type ProfileStore interface {
	GetProduction(ctx context.Context, contextType string) (store.WeightProfile, error)
	SaveCandidate(ctx context.Context, p store.WeightProfile) (int, error)
	Promote(ctx context.Context, contextType string) error
}

// Invalidator is the one cache capability the calibrator depends on, keeping
// the dependency direction clean (no import of the concrete cache type).
type Invalidator interface {
	Invalidate(contextType string)
}

// EventSink receives structured learning events. Write-only.
type EventSink interface {
	Record(ctx context.Context, ev logging.LearningEvent) error
}
// #endregion interfaces

// #region config
// Config holds the learning-rate knobs for weight calibration.
type Config struct {
	MaxShiftPerUpdate   float64       // raw cap on a single weight shift
	DampeningFactor     float64       // scales shifts down for stability
	MinSamplesForCommit int           // candidate samples needed before promotion
	MaxWeight           float64       // either weight never exceeds this
	MinImpact           float64       // reflection noise floor
	WriteTimeout        time.Duration // bound on store I/O per learning event
}

// DefaultConfig returns the production calibration settings.
func DefaultConfig() Config {
	return Config{
		MaxShiftPerUpdate:   0.05,
		DampeningFactor:     0.7,
		MinSamplesForCommit: 10,
		MaxWeight:           0.9,
		MinImpact:           0.1,
		WriteTimeout:        5 * time.Second,
	}
}
// #endregion config
