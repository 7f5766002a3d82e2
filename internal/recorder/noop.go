package recorder

import "PriceKeeper/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.RunRecord) error   { return nil }
func (n *NoopRecorder) LastRuns() ([]model.RunRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                         { return nil }
