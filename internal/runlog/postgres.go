package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// PgxIface is the subset of pgxpool.Pool the store uses; pgxmock
// implements it for tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on a shared Postgres.
type PostgresStore struct {
	pool  PgxIface
	close func()
}

// NewPostgres connects to the given DSN.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, eris.New("runlog postgres: no dsn configured")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "runlog postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "runlog postgres: ping")
	}
	return &PostgresStore{pool: pool, close: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id           TEXT PRIMARY KEY,
	step         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	rows_out     BIGINT NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_step ON pipeline_runs(step);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "runlog postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *PostgresStore) Start(ctx context.Context, step string) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, step, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, step, StatusRunning, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog postgres: start %s", step)
	}
	return id, nil
}

func (s *PostgresStore) Complete(ctx context.Context, id string, rowsOut int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, completed_at = now(), rows_out = $2 WHERE id = $3`,
		StatusComplete, rowsOut, id,
	)
	return eris.Wrapf(err, "runlog postgres: complete %s", id)
}

func (s *PostgresStore) Fail(ctx context.Context, id string, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, completed_at = now(), error = $2 WHERE id = $3`,
		StatusFailed, errMsg, id,
	)
	return eris.Wrapf(err, "runlog postgres: fail %s", id)
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, step, status, started_at, completed_at, rows_out, COALESCE(error, '')
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "runlog postgres: list")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var completedAt *time.Time
		if err := rows.Scan(&e.ID, &e.Step, &e.Status, &e.StartedAt, &completedAt, &e.RowsOut, &e.Error); err != nil {
			return nil, eris.Wrap(err, "runlog postgres: scan entry")
		}
		e.CompletedAt = completedAt
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "runlog postgres: list")
}
