// Package replay runs recorded feedback events through a calibrator against
// an in-memory parameter store, for offline verification of learning
// behavior before it touches a real database.
package replay

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/calibrator"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/feedback"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region summary
// Summary reports what a replay run did.
type Summary struct {
	Events             int
	Dispatched         int
	Rejected           int
	Promotions         int
	LearningModeEvents int
	FinalProfiles      []store.WeightProfile // production rows after replay
}

// Matches reports whether the summary satisfies the fixture's expectations.
func (s Summary) Matches(expected *FixtureExpected) bool {
	if expected == nil {
		return true
	}
	return s.Promotions == expected.Promotions &&
		s.LearningModeEvents == expected.LearningModeEvents &&
		s.Rejected == expected.Rejected
}
// #endregion summary

// #region replay
// Replay runs every fixture event through a fresh calibrator over an
// in-memory store seeded with the fixture's start profiles.
func Replay(ctx context.Context, fx Fixture, cfg calibrator.Config, log *zap.SugaredLogger) Summary {
	mem := newMemoryStore()
	for _, p := range fx.StartProfiles {
		mem.production[p.ContextType] = store.WeightProfile{
			SymbolicWeight: p.SymbolicWeight,
			NeuralWeight:   p.NeuralWeight,
			ContextType:    p.ContextType,
			SampleCount:    p.SampleCount,
		}
	}

	inv := &recordingInvalidator{}
	sink := &recordingSink{}
	cal := calibrator.New(mem, inv, sink, cfg, log)
	router := feedback.NewRouter(cal)

	summary := Summary{Events: len(fx.Events)}
	for _, fe := range fx.Events {
		if err := router.Dispatch(ctx, toFeedbackEvent(fe)); err != nil {
			log.Warnw("replay event rejected", "kind", fe.Kind, "error", err)
			summary.Rejected++
			continue
		}
		summary.Dispatched++
	}

	summary.Promotions = len(inv.invalidated)
	summary.LearningModeEvents = sink.countTrigger("hitl_override_learning")
	summary.FinalProfiles = mem.productionProfiles()
	return summary
}

func toFeedbackEvent(fe FixtureEvent) feedback.Event {
	switch fe.Kind {
	case "hitl":
		return feedback.Event{
			Kind: "hitl",
			HITL: &feedback.HITLEvent{
				ItemID: fe.ItemID,
				Status: fe.Status,
				Context: calibrator.HITLContext{
					ContextType: fe.ContextType,
					Confidence:  fe.Confidence,
					TDScore:     fe.TDScore,
				},
			},
		}
	case "reflection":
		return feedback.Event{
			Kind: "reflection",
			Reflection: &feedback.ReflectionEvent{
				TriggerType:       fe.TriggerType,
				NewSeedsGenerated: fe.NewSeedsGenerated,
				LearningImpact:    fe.LearningImpact,
			},
		}
	default:
		return feedback.Event{Kind: fe.Kind}
	}
}
// #endregion replay

// #region memory-store
// memoryStore implements calibrator.ProfileStore without I/O.
type memoryStore struct {
	mu         sync.Mutex
	production map[string]store.WeightProfile
	candidate  map[string]store.WeightProfile
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		production: make(map[string]store.WeightProfile),
		candidate:  make(map[string]store.WeightProfile),
	}
}

func (m *memoryStore) GetProduction(_ context.Context, contextType string) (store.WeightProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.production[contextType]
	if !ok {
		return store.WeightProfile{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memoryStore) SaveCandidate(_ context.Context, p store.WeightProfile) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 1
	if existing, ok := m.candidate[p.ContextType]; ok {
		count = existing.SampleCount + 1
	}
	p.SampleCount = count
	m.candidate[p.ContextType] = p
	return count, nil
}

func (m *memoryStore) Promote(_ context.Context, contextType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cand, ok := m.candidate[contextType]
	if !ok {
		return store.ErrNotFound
	}
	m.production[contextType] = cand
	cand.SampleCount = 0
	m.candidate[contextType] = cand
	return nil
}

func (m *memoryStore) productionProfiles() []store.WeightProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.WeightProfile, 0, len(m.production))
	for _, p := range m.production {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContextType < out[j].ContextType })
	return out
}
// #endregion memory-store

// #region recorders
type recordingInvalidator struct {
	mu          sync.Mutex
	invalidated []string
}

func (r *recordingInvalidator) Invalidate(contextType string) {
	r.mu.Lock()
	r.invalidated = append(r.invalidated, contextType)
	r.mu.Unlock()
}

type recordingSink struct {
	mu     sync.Mutex
	events []logging.LearningEvent
}

func (r *recordingSink) Record(_ context.Context, ev logging.LearningEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingSink) countTrigger(trigger string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.TriggerType == trigger {
			n++
		}
	}
	return n
}
// #endregion recorders
