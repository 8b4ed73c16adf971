package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a feedback replay fixture.
type Fixture struct {
	Description   string           `json:"description"`
	StartProfiles []FixtureProfile `json:"start_profiles,omitempty"`
	Events        []FixtureEvent   `json:"events"`
	Expected      *FixtureExpected `json:"expected,omitempty"`
}

// FixtureProfile seeds a production weight row before the replay starts.
type FixtureProfile struct {
	ContextType    string  `json:"context_type"`
	SymbolicWeight float64 `json:"symbolic_weight"`
	NeuralWeight   float64 `json:"neural_weight"`
	SampleCount    int     `json:"sample_count"`
}

// FixtureEvent is one recorded feedback event, flattened for hand-editing.
// Kind selects which fields apply.
type FixtureEvent struct {
	Kind string `json:"kind"` // "hitl" | "reflection"

	// hitl fields
	ItemID      string  `json:"item_id,omitempty"`
	Status      string  `json:"status,omitempty"`
	ContextType string  `json:"context_type,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	TDScore     float64 `json:"td_score,omitempty"`

	// reflection fields
	TriggerType       string  `json:"trigger_type,omitempty"`
	NewSeedsGenerated int     `json:"new_seeds_generated,omitempty"`
	LearningImpact    float64 `json:"learning_impact,omitempty"`
}

// FixtureExpected captures the expected replay outcome for regression runs.
type FixtureExpected struct {
	Promotions         int `json:"promotions"`
	LearningModeEvents int `json:"learning_mode_events"`
	Rejected           int `json:"rejected"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and decodes a fixture JSON file.
func LoadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var fx Fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(fx.Events) == 0 {
		return Fixture{}, fmt.Errorf("fixture %s has no events", path)
	}
	return fx, nil
}

// #endregion load
