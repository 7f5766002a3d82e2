package recorder

import "PriceKeeper/internal/model"

// Recorder persists the outcome of every ingestion run for later review.
type Recorder interface {
	RecordRun(rec *model.RunRecord) error
	// LastRuns returns the most recent run of each instrument, newest first.
	LastRuns() ([]model.RunRecord, error)
	Close() error
}
