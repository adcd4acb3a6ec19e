// Package archive persists completed trace runs in a local SQLite
// database so batches can be inspected after the fact without walking
// the log directory.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const createTraceRunTable = `
CREATE TABLE IF NOT EXISTS trace_run (
  run_id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  run_index INTEGER NOT NULL,
  asset TEXT NOT NULL,
  url TEXT NOT NULL,
  client TEXT NOT NULL,
  log_path TEXT NOT NULL,
  log_hash TEXT,
  trace_lines INTEGER NOT NULL,
  bytes_fetched INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  status TEXT NOT NULL,
  last_error TEXT,
  started_at_unix INTEGER NOT NULL
);`

type Store struct {
	db *sqlx.DB
}

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRecord is one trace run as stored in the archive.
type RunRecord struct {
	RunID         string
	SessionID     string
	RunIndex      int
	Asset         string
	URL           string
	Client        string
	LogPath       string
	LogHash       string
	TraceLines    int
	BytesFetched  int64
	DurationMS    int64
	Status        RunStatus
	LastError     string
	StartedAtUnix int64
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open run archive database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		fmt.Sprintf("PRAGMA cache_size=-%d;", DBCacheSizeKiB),
		fmt.Sprintf("PRAGMA busy_timeout=%d;", int64(DBBusyTimeout/time.Millisecond)),
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("cannot set sqlite database parameter: %w", err)
		}
	}

	if _, err := db.Exec(createTraceRunTable); err != nil {
		return nil, fmt.Errorf("cannot create trace_run table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) UpsertRun(rec RunRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if rec.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	if rec.Asset == "" {
		return fmt.Errorf("asset is required")
	}
	if rec.Status == "" {
		rec.Status = RunStatusCompleted
	}
	if rec.StartedAtUnix == 0 {
		rec.StartedAtUnix = time.Now().Unix()
	}

	_, err := s.db.Exec(
		`INSERT INTO trace_run (run_id, session_id, run_index, asset, url, client, log_path, log_hash, trace_lines, bytes_fetched, duration_ms, status, last_error, started_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
		   session_id=excluded.session_id,
		   run_index=excluded.run_index,
		   asset=excluded.asset,
		   url=excluded.url,
		   client=excluded.client,
		   log_path=excluded.log_path,
		   log_hash=excluded.log_hash,
		   trace_lines=excluded.trace_lines,
		   bytes_fetched=excluded.bytes_fetched,
		   duration_ms=excluded.duration_ms,
		   status=excluded.status,
		   last_error=excluded.last_error,
		   started_at_unix=excluded.started_at_unix`,
		rec.RunID,
		rec.SessionID,
		rec.RunIndex,
		rec.Asset,
		rec.URL,
		rec.Client,
		rec.LogPath,
		nullIfEmpty(rec.LogHash),
		rec.TraceLines,
		rec.BytesFetched,
		rec.DurationMS,
		string(rec.Status),
		nullIfEmpty(rec.LastError),
		rec.StartedAtUnix,
	)
	if err != nil {
		return fmt.Errorf("upsert trace_run: %w", err)
	}
	return nil
}

type runRow struct {
	RunID         string         `db:"run_id"`
	SessionID     string         `db:"session_id"`
	RunIndex      int            `db:"run_index"`
	Asset         string         `db:"asset"`
	URL           string         `db:"url"`
	Client        string         `db:"client"`
	LogPath       string         `db:"log_path"`
	LogHash       sql.NullString `db:"log_hash"`
	TraceLines    int            `db:"trace_lines"`
	BytesFetched  int64          `db:"bytes_fetched"`
	DurationMS    int64          `db:"duration_ms"`
	Status        string         `db:"status"`
	LastError     sql.NullString `db:"last_error"`
	StartedAtUnix int64          `db:"started_at_unix"`
}

func (r runRow) record() RunRecord {
	return RunRecord{
		RunID:         r.RunID,
		SessionID:     r.SessionID,
		RunIndex:      r.RunIndex,
		Asset:         r.Asset,
		URL:           r.URL,
		Client:        r.Client,
		LogPath:       r.LogPath,
		LogHash:       r.LogHash.String,
		TraceLines:    r.TraceLines,
		BytesFetched:  r.BytesFetched,
		DurationMS:    r.DurationMS,
		Status:        RunStatus(r.Status),
		LastError:     r.LastError.String,
		StartedAtUnix: r.StartedAtUnix,
	}
}

func (s *Store) GetRun(runID string) (RunRecord, bool, error) {
	if s == nil || s.db == nil {
		return RunRecord{}, false, fmt.Errorf("store not initialized")
	}

	var row runRow
	err := s.db.Get(&row, `SELECT run_id, session_id, run_index, asset, url, client, log_path, log_hash, trace_lines, bytes_fetched, duration_ms, status, last_error, started_at_unix FROM trace_run WHERE run_id = ?`, runID)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, fmt.Errorf("query trace_run: %w", err)
	}
	return row.record(), true, nil
}

// ListRuns returns the most recent runs, newest first. An empty asset
// matches all assets; limit <= 0 applies the default.
func (s *Store) ListRuns(asset string, limit int) ([]RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT run_id, session_id, run_index, asset, url, client, log_path, log_hash, trace_lines, bytes_fetched, duration_ms, status, last_error, started_at_unix FROM trace_run`
	args := []any{}
	if asset != "" {
		query += ` WHERE asset = ?`
		args = append(args, asset)
	}
	query += ` ORDER BY started_at_unix DESC, run_index DESC LIMIT ?`
	args = append(args, limit)

	var rows []runRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("query trace_run: %w", err)
	}

	records := make([]RunRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
