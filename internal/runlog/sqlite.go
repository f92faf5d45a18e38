package runlog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, ":") && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "runlog sqlite: create dir %s", dir)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id           TEXT PRIMARY KEY,
	step         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	rows_out     INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_step ON pipeline_runs(step);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "runlog sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Start(ctx context.Context, step string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, step, status, started_at) VALUES (?, ?, ?, ?)`,
		id, step, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog sqlite: start %s", step)
	}
	return id, nil
}

func (s *SQLiteStore) Complete(ctx context.Context, id string, rowsOut int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, completed_at = ?, rows_out = ? WHERE id = ?`,
		StatusComplete, time.Now().UTC(), rowsOut, id,
	)
	return eris.Wrapf(err, "runlog sqlite: complete %s", id)
}

func (s *SQLiteStore) Fail(ctx context.Context, id string, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		StatusFailed, time.Now().UTC(), errMsg, id,
	)
	return eris.Wrapf(err, "runlog sqlite: fail %s", id)
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, step, status, started_at, completed_at, rows_out, COALESCE(error, '')
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "runlog sqlite: list")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var completedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Step, &e.Status, &e.StartedAt, &completedAt, &e.RowsOut, &e.Error); err != nil {
			return nil, eris.Wrap(err, "runlog sqlite: scan entry")
		}
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "runlog sqlite: list")
}
