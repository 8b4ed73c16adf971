package store

import (
	"errors"
	"time"
)

// #region errors
// ErrNotFound is returned when no row exists for a (contextType, isCandidate) key.
var ErrNotFound = errors.New("weight profile not found")
// #endregion errors

// #region weight-profile
// WeightProfile is the unit of learned state: how much to trust the symbolic
// versus the neural response for one context type. SymbolicWeight and
// NeuralWeight always sum to 1.0.
type WeightProfile struct {
	SymbolicWeight float64
	NeuralWeight   float64
	ContextType    string
	SampleCount    int
}

// DefaultProfile returns the hard-coded starting profile for a context type.
func DefaultProfile(contextType string) WeightProfile {
	return WeightProfile{
		SymbolicWeight: 0.7,
		NeuralWeight:   0.3,
		ContextType:    contextType,
		SampleCount:    0,
	}
}
// #endregion weight-profile

// #region profile-row
// ProfileRow is a stored profile with its row-level bookkeeping, as returned
// by ListProfiles for inspection tooling.
type ProfileRow struct {
	Profile     WeightProfile
	IsCandidate bool
	LastUpdated time.Time
	Metadata    map[string]string
}
// #endregion profile-row
