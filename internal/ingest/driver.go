// Package ingest runs one fetch, extract, compare and append cycle for a
// single instrument.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"PriceKeeper/internal/collector"
	"PriceKeeper/internal/extractor"
	"PriceKeeper/internal/model"
	"PriceKeeper/internal/recorder"
	"PriceKeeper/internal/series"
)

// State is a step of a run. Runs only move forward.
type State string

const (
	StateFetching   State = "FETCHING"
	StateExtracting State = "EXTRACTING"
	StateComparing  State = "COMPARING"
	StateAppending  State = "APPENDING"
	StateSkipping   State = "SKIPPING"
	StateMirroring  State = "MIRRORING"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Store is the persisted series the driver compares against and appends to.
type Store interface {
	LastDate() (model.Date, bool)
	Append(obs model.Observation) (model.AppendResult, error)
	ReadAll() ([]model.Observation, error)
}

// Notifier receives every finished run.
type Notifier interface {
	NotifyRun(ctx context.Context, rec *model.RunRecord) error
}

// Result is the outcome of one run.
type Result struct {
	Instrument  string
	Status      model.Status
	State       State
	FailedIn    State
	Observation *model.Observation
	LastDate    *model.Date
	Err         error
	MirrorErr   error
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Record converts the result for the run log.
func (r Result) Record() *model.RunRecord {
	rec := &model.RunRecord{
		Instrument:  r.Instrument,
		Status:      r.Status,
		Observation: r.Observation,
		LastDate:    r.LastDate,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if r.MirrorErr != nil {
		rec.MirrorError = r.MirrorErr.Error()
	}
	return rec
}

// Driver owns the configuration of one instrument. Mirror, Recorder and
// Notifier are optional.
type Driver struct {
	Instrument string
	URL        string
	Headers    map[string]string

	Fetcher   collector.Fetcher
	Extractor extractor.Extractor
	Store     Store
	Mirror    series.Mirror
	Recorder  recorder.Recorder
	Notifier  Notifier

	Now func() time.Time
}

// Run performs a single ingestion. It never retries; a failed run leaves the
// store untouched and the next scheduled run is the retry.
func (d *Driver) Run(ctx context.Context) Result {
	res := Result{Instrument: d.Instrument, StartedAt: d.now()}
	d.run(ctx, &res)
	res.FinishedAt = d.now()

	switch res.Status {
	case model.StatusFailed:
		log.Printf("[ERROR] %s: run failed in %s: %v", d.Instrument, res.FailedIn, res.Err)
	default:
		log.Printf("[INFO] %s: run finished: %s", d.Instrument, res.Status)
	}

	d.report(ctx, res)
	return res
}

func (d *Driver) run(ctx context.Context, res *Result) {
	d.enter(res, StateFetching)
	body, err := d.Fetcher.Fetch(ctx, d.URL, d.Headers)
	if err != nil {
		d.fail(res, err)
		return
	}

	d.enter(res, StateExtracting)
	obs, err := d.Extractor.Latest(body)
	if err != nil {
		d.fail(res, err)
		return
	}
	res.Observation = &obs
	log.Printf("[INFO] %s: source latest %s", d.Instrument, obs)

	d.enter(res, StateComparing)
	if last, ok := d.Store.LastDate(); ok {
		res.LastDate = &last
		if !obs.Date.After(last) {
			if obs.Date.Before(last) {
				log.Printf("[WARN] %s: source date %s is older than stored %s", d.Instrument, obs.Date, last)
			}
			d.skip(res, fmt.Sprintf("stored %s is not older than %s", last, obs.Date))
			return
		}
	}

	d.enter(res, StateAppending)
	ar, err := d.Store.Append(obs)
	if err != nil {
		d.fail(res, err)
		return
	}
	if ar == model.SkippedDuplicate {
		d.skip(res, fmt.Sprintf("row for %s already present", obs.Date))
		return
	}
	res.Status = model.StatusAppended

	if d.Mirror != nil {
		d.enter(res, StateMirroring)
		if err := d.mirror(); err != nil {
			log.Printf("[ERROR] %s: mirror: %v", d.Instrument, err)
			res.MirrorErr = err
		}
	}
	d.enter(res, StateDone)
}

func (d *Driver) mirror() error {
	all, err := d.Store.ReadAll()
	if err != nil {
		return err
	}
	if err := d.Mirror.Project(all); err != nil {
		return fmt.Errorf("project mirror: %w", err)
	}
	return nil
}

func (d *Driver) enter(res *Result, s State) {
	res.State = s
	log.Printf("[INFO] %s: %s", d.Instrument, s)
}

func (d *Driver) skip(res *Result, reason string) {
	d.enter(res, StateSkipping)
	log.Printf("[INFO] %s: nothing to append: %s", d.Instrument, reason)
	res.Status = model.StatusSkipped
	res.State = StateDone
}

func (d *Driver) fail(res *Result, err error) {
	if !errors.Is(err, collector.ErrTransport) && !errors.Is(err, extractor.ErrExtraction) && !errors.Is(err, series.ErrStoreWrite) {
		err = fmt.Errorf("%s: %w", strings.ToLower(string(res.State)), err)
	}
	res.FailedIn = res.State
	res.State = StateFailed
	res.Status = model.StatusFailed
	res.Err = err
}

func (d *Driver) report(ctx context.Context, res Result) {
	if d.Recorder == nil && d.Notifier == nil {
		return
	}
	rec := res.Record()
	if d.Recorder != nil {
		if err := d.Recorder.RecordRun(rec); err != nil {
			log.Printf("[WARN] %s: record run: %v", d.Instrument, err)
		}
	}
	if d.Notifier != nil {
		if err := d.Notifier.NotifyRun(ctx, rec); err != nil {
			log.Printf("[WARN] %s: notify: %v", d.Instrument, err)
		}
	}
}

func (d *Driver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
