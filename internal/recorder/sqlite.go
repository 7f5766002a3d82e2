package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"PriceKeeper/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the run log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			instrument   TEXT NOT NULL,
			status       TEXT NOT NULL,
			obs_date     TEXT,
			obs_price    TEXT,
			last_date    TEXT,
			error        TEXT,
			mirror_error TEXT,
			started_at   INTEGER NOT NULL,
			finished_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_instrument ON runs(instrument, finished_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = NewRunID(rec.StartedAt)
	}

	var obsDate, obsPrice, lastDate sql.NullString
	if rec.Observation != nil {
		obsDate = sql.NullString{String: rec.Observation.Date.String(), Valid: true}
		obsPrice = sql.NullString{String: rec.Observation.PriceString(), Valid: true}
	}
	if rec.LastDate != nil {
		lastDate = sql.NullString{String: rec.LastDate.String(), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO runs
		(id, instrument, status, obs_date, obs_price, last_date, error, mirror_error, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Instrument, string(rec.Status), obsDate, obsPrice, lastDate,
		rec.Error, rec.MirrorError,
		rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) LastRuns() ([]model.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, instrument, status, obs_date, obs_price, last_date,
			error, mirror_error, started_at, finished_at
		FROM runs r
		WHERE id = (SELECT id FROM runs WHERE instrument = r.instrument ORDER BY id DESC LIMIT 1)
		ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var (
			rec                        model.RunRecord
			status                     string
			obsDate, obsPrice, lastDay sql.NullString
			errText, mirrorErr         sql.NullString
			started, finished          int64
		)
		if err := rows.Scan(&rec.ID, &rec.Instrument, &status, &obsDate, &obsPrice, &lastDay,
			&errText, &mirrorErr, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Status = model.Status(status)
		rec.Error = errText.String
		rec.MirrorError = mirrorErr.String
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)

		if obsDate.Valid {
			if d, err := time.Parse(model.DateLayout, obsDate.String); err == nil {
				o := model.Observation{Date: model.DateOf(d)}
				o.Price, _ = decimal.NewFromString(obsPrice.String)
				rec.Observation = &o
			}
		}
		if lastDay.Valid {
			if d, err := time.Parse(model.DateLayout, lastDay.String); err == nil {
				ld := model.DateOf(d)
				rec.LastDate = &ld
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
