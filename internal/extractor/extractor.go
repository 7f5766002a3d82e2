// Package extractor pulls the single most recent observation out of raw
// remote content. Each instrument is configured with exactly one strategy.
package extractor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"PriceKeeper/internal/model"
	"PriceKeeper/internal/normalize"
)

// ErrExtraction matches every *ExtractionError via errors.Is.
var ErrExtraction = errors.New("no usable observation")

// ExtractionError reports that fetched content held no valid observation.
type ExtractionError struct {
	Strategy string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract (%s): %s: %v", e.Strategy, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract (%s): %s", e.Strategy, e.Reason)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor derives the latest observation from one fetched snapshot.
type Extractor interface {
	Name() string
	Latest(content []byte) (model.Observation, error)
}

// Kind names an extraction strategy in configuration.
type Kind string

const (
	KindCSVFeed     Kind = "csv_feed"
	KindHeaderTable Kind = "header_table"
	KindLabeledRow  Kind = "labeled_row"
)

// Kinds lists every supported strategy.
var Kinds = []Kind{KindCSVFeed, KindHeaderTable, KindLabeledRow}

// Options carries the per-instrument knobs. Zero values fall back to the
// defaults of the selected strategy.
type Options struct {
	DateColumn    string
	PriceColumn   string
	DateKeywords  []string
	PriceKeywords []string
	Label         string
	MinCells      int
	Decimal       normalize.DecimalMark
}

// New builds the extractor for kind.
func New(kind Kind, opts Options) (Extractor, error) {
	switch kind {
	case KindCSVFeed:
		f := NewCSVFeed(opts.DateColumn, opts.PriceColumn)
		f.Decimal = opts.Decimal
		return f, nil
	case KindHeaderTable:
		h := NewHeaderTable(opts.DateKeywords, opts.PriceKeywords)
		h.Decimal = opts.Decimal
		return h, nil
	case KindLabeledRow:
		l := NewLabeledRow(opts.Label, opts.MinCells)
		l.Decimal = opts.Decimal
		return l, nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", kind)
	}
}

// observationFrom normalizes one raw (date, price) pair.
func observationFrom(rawDate, rawPrice string, mark normalize.DecimalMark) (model.Observation, error) {
	d, err := normalize.ParseDate(rawDate)
	if err != nil {
		return model.Observation{}, err
	}
	p, err := normalize.ParsePriceAs(rawPrice, mark)
	if err != nil {
		return model.Observation{}, err
	}
	return model.Observation{Date: d, Price: p}, nil
}

// latest returns the row with the greatest date. On equal dates the one seen
// last in the source wins.
func latest(obs []model.Observation) model.Observation {
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs[len(obs)-1]
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func orDefault(v []string, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
