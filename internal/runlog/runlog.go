// Package runlog persists the history of pipeline runs: one row per
// step execution with status, timing, and row counts. The default
// backend is a local SQLite file; a shared Postgres can be configured
// when several operators run the pipeline against common storage.
package runlog

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Status values for a run entry.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Entry is one recorded step execution.
type Entry struct {
	ID          string     `json:"id"`
	Step        string     `json:"step"` // extract | enrich | build | run
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RowsOut     int64      `json:"rows_out"`
	Error       string     `json:"error,omitempty"`
}

// Store records pipeline step executions.
type Store interface {
	Start(ctx context.Context, step string) (string, error)
	Complete(ctx context.Context, id string, rowsOut int64) error
	Fail(ctx context.Context, id string, errMsg string) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the given driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("runlog: unknown driver %q (valid: sqlite, postgres)", driver)
	}
}
