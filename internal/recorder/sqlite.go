package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists rate resolution history to a SQLite database.
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

	// WAL so audit readers don't block the resolver.
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
		`CREATE TABLE IF NOT EXISTS rate_resolutions (
			id                   TEXT PRIMARY KEY,
			timestamp            INTEGER NOT NULL,
			source               TEXT NOT NULL,
			degraded             INTEGER NOT NULL DEFAULT 0,
			forced               INTEGER NOT NULL DEFAULT 0,
			rates                TEXT NOT NULL,
			filled_from_fallback TEXT,
			error                TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_ts ON rate_resolutions(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordResolution(evt *ResolutionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	ratesJSON, err := json.Marshal(evt.Rates)
	if err != nil {
		return fmt.Errorf("encode rates: %w", err)
	}

	_, err = r.db.Exec(`INSERT INTO rate_resolutions
		(id, timestamp, source, degraded, forced, rates, filled_from_fallback, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.ID, evt.Timestamp.UnixMilli(), evt.Source, evt.Degraded, evt.Forced,
		string(ratesJSON), strings.Join(evt.FilledFromFallback, ","), evt.Error,
	)
	return err
}

// History returns the most recent resolutions, newest first.
func (r *SQLiteRecorder) History(limit int) ([]ResolutionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT id, timestamp, source, degraded, forced, rates, filled_from_fallback, error
		FROM rate_resolutions ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []ResolutionEvent
	for rows.Next() {
		var (
			evt       ResolutionEvent
			ts        int64
			ratesJSON string
			filled    sql.NullString
			errText   sql.NullString
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Source, &evt.Degraded, &evt.Forced, &ratesJSON, &filled, &errText); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		evt.Timestamp = time.UnixMilli(ts)
		evt.Rates = map[string]decimal.Decimal{}
		if err := json.Unmarshal([]byte(ratesJSON), &evt.Rates); err != nil {
			return nil, fmt.Errorf("decode rates %s: %w", evt.ID, err)
		}
		if filled.String != "" {
			evt.FilledFromFallback = strings.Split(filled.String, ",")
		}
		evt.Error = errText.String
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
