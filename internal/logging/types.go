package logging

import "time"

// #region recognition-entry
// RecognitionEntry is one row of the recognition_log table: the outcome of a
// single sentence's recognition attempt.
type RecognitionEntry struct {
	ID         string
	Grammar    string
	Sentence   string
	PathCount  int
	Intent     string
	Confidence float64
	ErrReason  string
	CreatedAt  time.Time
}

// #endregion recognition-entry
