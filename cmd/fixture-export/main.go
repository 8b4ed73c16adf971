package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/response-fusion/go-controller/internal/logging"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/replay"
	"github.com/danielpatrickdp/response-fusion/go-controller/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to fusion_weights.db (omit for a starter fixture)")
	last := flag.Int("last", 20, "number of most recent learning events to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --out path/to/fixture.json [--db path/to/db] [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dbPath string, last int, outPath string) error {
	var fx replay.Fixture
	if dbPath == "" {
		fx = starterFixture()
	} else {
		exported, err := exportFixture(dbPath, last)
		if err != nil {
			return err
		}
		fx = exported
	}

	raw, err := json.MarshalIndent(fx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	fmt.Printf("wrote %d events to %s\n", len(fx.Events), outPath)
	return nil
}

// exportFixture rebuilds feedback events from the learning log. Only
// override triggers carry enough detail to reconstruct; shift events are
// exported as approved HITL events against their context type.
func exportFixture(dbPath string, last int) (replay.Fixture, error) {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return replay.Fixture{}, fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	events, err := logging.NewEventLog(st.DB()).Recent(ctx, last)
	if err != nil {
		return replay.Fixture{}, err
	}

	fx := replay.Fixture{Description: fmt.Sprintf("exported from %s", dbPath)}

	profiles, err := st.ListProfiles(ctx)
	if err != nil {
		return replay.Fixture{}, err
	}
	for _, r := range profiles {
		if r.IsCandidate {
			continue
		}
		fx.StartProfiles = append(fx.StartProfiles, replay.FixtureProfile{
			ContextType:    r.Profile.ContextType,
			SymbolicWeight: r.Profile.SymbolicWeight,
			NeuralWeight:   r.Profile.NeuralWeight,
			SampleCount:    r.Profile.SampleCount,
		})
	}

	// Recent() returns newest first; replay wants original order.
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.TriggerType == "hitl_override_learning" {
			fx.Events = append(fx.Events, replay.FixtureEvent{
				Kind:        "hitl",
				Status:      "override",
				ContextType: ev.ContextType,
			})
			continue
		}
		fx.Events = append(fx.Events, replay.FixtureEvent{
			Kind:        "hitl",
			Status:      "approved",
			ContextType: ev.ContextType,
		})
	}
	return fx, nil
}

// #endregion run

// #region starter

// starterFixture is a hand-runnable example: ten approvals drive one
// promotion for the normal context, plus one override and one reflection.
func starterFixture() replay.Fixture {
	fx := replay.Fixture{
		Description: "starter: 10 approvals promote normal, 1 override, 1 reflection",
		Expected: &replay.FixtureExpected{
			Promotions:         1,
			LearningModeEvents: 1,
			Rejected:           0,
		},
	}
	for i := 0; i < 10; i++ {
		fx.Events = append(fx.Events, replay.FixtureEvent{
			Kind:        "hitl",
			ItemID:      fmt.Sprintf("item-%d", i+1),
			Status:      "approved",
			ContextType: "normal",
			Confidence:  0.8,
			TDScore:     0.4,
		})
	}
	fx.Events = append(fx.Events,
		replay.FixtureEvent{
			Kind:        "hitl",
			ItemID:      "item-11",
			Status:      "override",
			ContextType: "crisis",
			Confidence:  0.3,
			TDScore:     0.9,
		},
		replay.FixtureEvent{
			Kind:              "reflection",
			TriggerType:       "novel_topic",
			NewSeedsGenerated: 2,
			LearningImpact:    0.6,
		},
	)
	return fx
}

// #endregion starter
