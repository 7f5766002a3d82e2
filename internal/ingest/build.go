package ingest

import (
	"fmt"

	"PriceKeeper/internal/collector"
	"PriceKeeper/internal/config"
	"PriceKeeper/internal/extractor"
	"PriceKeeper/internal/recorder"
	"PriceKeeper/internal/series"
)

// NewDriver wires a driver for one configured instrument. rec and n may be nil.
func NewDriver(inst config.Instrument, f collector.Fetcher, rec recorder.Recorder, n Notifier) (*Driver, error) {
	ex, err := extractor.New(extractor.Kind(inst.Strategy), inst.ExtractorOptions())
	if err != nil {
		return nil, fmt.Errorf("instrument %s: %w", inst.Name, err)
	}
	d := &Driver{
		Instrument: inst.Name,
		URL:        inst.URL,
		Headers:    inst.Headers,
		Fetcher:    f,
		Extractor:  ex,
		Store:      series.NewCSVStore(inst.Output),
		Recorder:   rec,
		Notifier:   n,
	}
	if inst.Mirror != "" {
		d.Mirror = series.NewXLSXMirror(inst.Mirror, inst.MirrorSheet)
	}
	return d, nil
}
