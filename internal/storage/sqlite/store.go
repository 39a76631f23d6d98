package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hetulpatel/polykalshi/internal/hashutil"
	"github.com/hetulpatel/polykalshi/internal/market"
)

const (
	defaultPath = "data/polykalshi.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the quotes and opportunities tables exist.
func (s *Store) CreateTables(ctx context.Context) error {
	for _, stmt := range []string{quotesSchemaSQL, opportunitiesSchemaSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DropTables removes all tables.
func (s *Store) DropTables(ctx context.Context) error {
	stmts := []string{
		`DROP TABLE IF EXISTS quotes;`,
		`DROP TABLE IF EXISTS arb_opportunities;`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ClearTables truncates all tables.
func (s *Store) ClearTables(ctx context.Context) error {
	stmts := []string{
		`DELETE FROM quotes;`,
		`DELETE FROM arb_opportunities;`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const quotesSchemaSQL = `
CREATE TABLE IF NOT EXISTS quotes (
	exchange TEXT NOT NULL,
	market_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	event_title TEXT,
	event_key TEXT,
	price REAL,
	size REAL,
	end_date TEXT,
	depth_json TEXT,
	text_hash TEXT,
	last_seen_at TEXT,
	PRIMARY KEY (exchange, market_id, outcome)
);
CREATE INDEX IF NOT EXISTS quotes_event_idx ON quotes(exchange, event_key);
`

// UpsertQuotes inserts/updates the latest quote per (exchange, market, outcome).
func (s *Store) UpsertQuotes(ctx context.Context, quotes []market.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, quoteUpsertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, q := range quotes {
		if err := execQuoteUpsert(ctx, stmt, q, now); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

const quoteUpsertSQL = `
INSERT INTO quotes (
	exchange, market_id, outcome, event_title, event_key,
	price, size, end_date, depth_json, text_hash, last_seen_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(exchange, market_id, outcome) DO UPDATE SET
	event_title=excluded.event_title,
	event_key=excluded.event_key,
	price=excluded.price,
	size=excluded.size,
	end_date=excluded.end_date,
	depth_json=excluded.depth_json,
	text_hash=excluded.text_hash,
	last_seen_at=excluded.last_seen_at;
`

func execQuoteUpsert(ctx context.Context, stmt *sql.Stmt, q market.Quote, ts string) error {
	depthJSON, _ := json.Marshal(q.Depth)
	_, err := stmt.ExecContext(
		ctx,
		string(q.Exchange),
		q.MarketID,
		string(q.Outcome),
		q.Event,
		market.EventKey(q.Event),
		q.Price,
		q.Size,
		formatTime(q.EndDate),
		string(depthJSON),
		hashutil.TextDigest(q.Event),
		ts,
	)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
