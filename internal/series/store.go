// Package series persists one instrument's daily closing prices as an
// append-only CSV file and projects it into secondary formats.
package series

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"PriceKeeper/internal/model"
	"PriceKeeper/internal/normalize"

	"github.com/shopspring/decimal"
)

// Column names of the on-disk header.
const (
	DateColumn  = "Datum"
	PriceColumn = "Kurs"
)

// Header is the single header line written to a fresh file.
const Header = DateColumn + "," + PriceColumn

// ErrStoreWrite matches every *StoreWriteError via errors.Is.
var ErrStoreWrite = errors.New("series write failed")

var errNoDateColumn = errors.New("no " + DateColumn + " column")

// StoreWriteError reports that an append left the file untouched.
type StoreWriteError struct {
	Path string
	Err  error
}

func (e *StoreWriteError) Error() string { return fmt.Sprintf("append %s: %v", e.Path, e.Err) }

func (e *StoreWriteError) Is(target error) bool { return target == ErrStoreWrite }

func (e *StoreWriteError) Unwrap() error { return e.Err }

// CSVStore is the series file of one instrument. It only ever appends.
type CSVStore struct {
	mu   sync.Mutex
	Path string
}

// NewCSVStore returns a store for path. The file is created on first append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

type record struct {
	date  model.Date
	price string
}

// LastDate returns the high-water-mark. A missing, empty or unreadable file,
// or one without the date column, reports false.
func (s *CSVStore) LastDate() (model.Date, bool) {
	recs, ok := s.readTolerant()
	if !ok || len(recs) == 0 {
		return model.Date{}, false
	}
	last := recs[0].date
	for _, r := range recs[1:] {
		if r.date.After(last) {
			last = r.date
		}
	}
	return last, true
}

// Contains reports whether a row for d exists. An unreadable file reports
// false so that an append is still attempted.
func (s *CSVStore) Contains(d model.Date) bool {
	recs, _ := s.readTolerant()
	for _, r := range recs {
		if r.date.Equal(d) {
			return true
		}
	}
	return false
}

// Append writes obs as a new row unless its date is already present. The
// header (for a new or empty file) and the row go out in a single write; a
// failed write is rolled back to the previous file size.
func (s *CSVStore) Append(obs model.Observation) (model.AppendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Contains(obs.Date) {
		log.Printf("[INFO] series %s: %s already present, not appending", s.Path, obs.Date)
		return model.SkippedDuplicate, nil
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return model.AppendFailed, &StoreWriteError{Path: s.Path, Err: err}
		}
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return model.AppendFailed, &StoreWriteError{Path: s.Path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return model.AppendFailed, &StoreWriteError{Path: s.Path, Err: err}
	}
	size := info.Size()

	var buf bytes.Buffer
	switch {
	case size == 0:
		buf.WriteString(Header + "\n")
	case !endsWithNewline(f, size):
		buf.WriteByte('\n')
	}
	buf.WriteString(obs.Date.String() + "," + obs.PriceString() + "\n")

	n, err := f.Write(buf.Bytes())
	if err == nil && n != buf.Len() {
		err = io.ErrShortWrite
	}
	if err != nil {
		if n > 0 {
			if terr := f.Truncate(size); terr != nil {
				log.Printf("[ERROR] series %s: rollback of partial row failed: %v", s.Path, terr)
			}
		}
		f.Close()
		return model.AppendFailed, &StoreWriteError{Path: s.Path, Err: err}
	}
	if err := f.Close(); err != nil {
		return model.AppendFailed, &StoreWriteError{Path: s.Path, Err: err}
	}
	return model.Appended, nil
}

// ReadAll returns every valid row in ascending date order.
func (s *CSVStore) ReadAll() ([]model.Observation, error) {
	recs, err := s.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read series: %w", err)
	}
	out := make([]model.Observation, 0, len(recs))
	for _, r := range recs {
		p, err := decimal.NewFromString(r.price)
		if err != nil {
			if p, err = normalize.ParsePrice(r.price); err != nil {
				continue
			}
		}
		out = append(out, model.Observation{Date: r.date, Price: p})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Project rewrites m from the full series.
func (s *CSVStore) Project(m Mirror) error {
	obs, err := s.ReadAll()
	if err != nil {
		return err
	}
	return m.Project(obs)
}

// readTolerant maps every read failure to "no rows". Anything other than a
// missing file is logged.
func (s *CSVStore) readTolerant() ([]record, bool) {
	recs, err := s.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] series %s unreadable, treating as empty: %v", s.Path, err)
		}
		return nil, false
	}
	return recs, true
}

func (s *CSVStore) read() ([]record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	di, pi := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case DateColumn:
			di = i
		case PriceColumn:
			pi = i
		}
	}
	if di < 0 {
		return nil, errNoDateColumn
	}

	var recs []record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			log.Printf("[WARN] series %s: skipping malformed line %d: %v", s.Path, perr.Line, perr.Err)
			continue
		}
		if err != nil {
			return nil, err
		}
		if di >= len(row) {
			continue
		}
		d, err := normalize.ParseDate(row[di])
		if err != nil {
			continue
		}
		rec := record{date: d}
		if pi >= 0 && pi < len(row) {
			rec.price = strings.TrimSpace(row[pi])
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func endsWithNewline(f *os.File, size int64) bool {
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, size-1); err != nil {
		return true
	}
	return b[0] == '\n'
}
