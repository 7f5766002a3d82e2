package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"PriceKeeper/internal/model"
	"PriceKeeper/internal/normalize"
)

// CSVFeed reads a daily-bars CSV export such as Stooq's
// "Date,Open,High,Low,Close,Volume".
type CSVFeed struct {
	DateColumn  string
	PriceColumn string
	Decimal     normalize.DecimalMark
}

func NewCSVFeed(dateColumn, priceColumn string) *CSVFeed {
	if dateColumn == "" {
		dateColumn = "Date"
	}
	if priceColumn == "" {
		priceColumn = "Close"
	}
	return &CSVFeed{DateColumn: dateColumn, PriceColumn: priceColumn}
}

func (f *CSVFeed) Name() string { return string(KindCSVFeed) }

func (f *CSVFeed) Latest(content []byte) (model.Observation, error) {
	text := bytes.TrimSpace(bytes.TrimPrefix(content, []byte("\ufeff")))
	if len(text) == 0 {
		return model.Observation{}, f.fail("empty content", nil)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return model.Observation{}, f.fail("read header", err)
	}
	di, pi := columnIndex(header, f.DateColumn), columnIndex(header, f.PriceColumn)
	if di < 0 || pi < 0 {
		return model.Observation{}, f.fail("missing columns", fmt.Errorf("want %s,%s; got %v", f.DateColumn, f.PriceColumn, header))
	}

	var obs []model.Observation
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return model.Observation{}, f.fail("read rows", err)
		}
		if di >= len(rec) || pi >= len(rec) {
			continue
		}
		o, err := observationFrom(rec[di], rec[pi], f.Decimal)
		if err != nil {
			continue
		}
		obs = append(obs, o)
	}

	if len(obs) == 0 {
		return model.Observation{}, f.fail("no valid rows", nil)
	}
	return latest(obs), nil
}

func (f *CSVFeed) fail(reason string, err error) error {
	return &ExtractionError{Strategy: f.Name(), Reason: reason, Err: err}
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
