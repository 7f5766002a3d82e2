package model

import "time"

// Status is the terminal outcome of one ingestion run.
type Status string

const (
	StatusAppended Status = "APPENDED"
	StatusSkipped  Status = "SKIPPED"
	StatusFailed   Status = "FAILED"
)

// RunRecord is the persisted summary of a finished run.
type RunRecord struct {
	ID          string
	Instrument  string
	Status      Status
	Observation *Observation
	LastDate    *Date
	Error       string
	MirrorError string
	StartedAt   time.Time
	FinishedAt  time.Time
}
