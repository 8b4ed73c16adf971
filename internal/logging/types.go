package logging

import "time"

// #region learning-event
// LearningEvent is a single row in the learning_log table: a structured record
// of a learning-mode trigger, a promotion, or any other calibration decision
// that downstream tooling should be able to see.
type LearningEvent struct {
	EventID     string
	TriggerType string
	ContextType string
	ContextJSON string
	NewSeeds    int
	Impact      float64
	CreatedAt   time.Time
}
// #endregion learning-event
