// Package lake writes and reads the pipeline's columnar outputs. Rows
// are staged into an in-memory DuckDB table and copied out as
// zstd-compressed parquet; reads go through read_parquet on the same
// engine. Files are written to a temp name and renamed so a crashed run
// never leaves a half-written table behind.
package lake

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rotisserie/eris"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
)

// Store is an in-memory DuckDB handle used for parquet I/O.
type Store struct {
	db *sql.DB
}

// Open creates an in-memory DuckDB instance.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, eris.Wrap(err, "lake: open duckdb")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "lake: ping duckdb")
	}
	return &Store{db: db}, nil
}

// Close releases the engine.
func (s *Store) Close() error {
	return s.db.Close()
}

const longSchema = `
	unitid           BIGINT NOT NULL,
	year             INTEGER NOT NULL,
	instnm           VARCHAR,
	control          VARCHAR,
	"level"          VARCHAR,
	state            VARCHAR,
	sector           VARCHAR,
	grad_rate_150    DOUBLE,
	source_flag      VARCHAR NOT NULL,
	is_revised       BOOLEAN NOT NULL,
	cohort_reference VARCHAR NOT NULL,
	load_ts          TIMESTAMP NOT NULL
`

// WriteLong writes long-format records (canonical or latest-by-entity
// projection, same schema) to a parquet file.
func (s *Store) WriteLong(ctx context.Context, path string, records []ipeds.LongRecord) error {
	insert := `INSERT INTO staging VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return s.write(ctx, path, longSchema, insert, len(records), func(i int) []any {
		r := records[i]
		return []any{
			r.UnitID, int32(r.Year), nullStr(r.InstitutionName),
			nullStr(string(r.Control)), nullStr(string(r.Level)),
			nullStr(r.State), nullStr(string(r.Sector)),
			nullFloat(r.GradRate), string(r.SourceFlag), r.IsRevised,
			r.CohortReference, r.LoadTS,
		}
	})
}

const summarySchema = `
	year              INTEGER NOT NULL,
	sector            VARCHAR NOT NULL,
	institution_count INTEGER NOT NULL,
	avg_grad_rate     DOUBLE,
	median_grad_rate  DOUBLE,
	p25_grad_rate     DOUBLE,
	p75_grad_rate     DOUBLE
`

// WriteSummary writes the year-by-sector aggregate table to parquet.
func (s *Store) WriteSummary(ctx context.Context, path string, rows []ipeds.SummaryRow) error {
	insert := `INSERT INTO staging VALUES (?, ?, ?, ?, ?, ?, ?)`
	return s.write(ctx, path, summarySchema, insert, len(rows), func(i int) []any {
		r := rows[i]
		return []any{
			int32(r.Year), string(r.Sector), int32(r.InstitutionCount),
			nullFloat(r.MeanRate), nullFloat(r.MedianRate),
			nullFloat(r.P25Rate), nullFloat(r.P75Rate),
		}
	})
}

// ReadLong loads long-format records back from a parquet file, ordered
// by (unitid, year, cohort_reference, source_flag).
func (s *Store) ReadLong(ctx context.Context, path string) ([]ipeds.LongRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT unitid, year, instnm, control, "level", state, sector,
		        grad_rate_150, source_flag, is_revised, cohort_reference, load_ts
		 FROM read_parquet(%s)
		 ORDER BY unitid, year, cohort_reference, source_flag`, quote(path)))
	if err != nil {
		return nil, eris.Wrapf(err, "lake: read parquet %s", path)
	}
	defer rows.Close()

	var out []ipeds.LongRecord
	for rows.Next() {
		var (
			r                                     ipeds.LongRecord
			year                                  int32
			instnm, control, level, state, sector sql.NullString
			rate                                  sql.NullFloat64
			flag                                  string
			loadTS                                time.Time
		)
		if err := rows.Scan(&r.UnitID, &year, &instnm, &control, &level, &state, &sector,
			&rate, &flag, &r.IsRevised, &r.CohortReference, &loadTS); err != nil {
			return nil, eris.Wrapf(err, "lake: scan parquet row %s", path)
		}
		r.Year = int(year)
		r.InstitutionName = instnm.String
		r.Control = ipeds.Control(control.String)
		r.Level = ipeds.Level(level.String)
		r.State = state.String
		r.Sector = ipeds.Sector(sector.String)
		if rate.Valid {
			v := rate.Float64
			r.GradRate = &v
		}
		r.SourceFlag = ipeds.SourceFlag(flag)
		r.LoadTS = loadTS.UTC()
		out = append(out, r)
	}
	return out, eris.Wrapf(rows.Err(), "lake: read parquet %s", path)
}

// ReadSummary loads aggregate rows back from a parquet file, ordered by
// (year, sector).
func (s *Store) ReadSummary(ctx context.Context, path string) ([]ipeds.SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT year, sector, institution_count, avg_grad_rate,
		        median_grad_rate, p25_grad_rate, p75_grad_rate
		 FROM read_parquet(%s)
		 ORDER BY year, sector`, quote(path)))
	if err != nil {
		return nil, eris.Wrapf(err, "lake: read parquet %s", path)
	}
	defer rows.Close()

	var out []ipeds.SummaryRow
	for rows.Next() {
		var (
			r                      ipeds.SummaryRow
			year, count            int32
			sector                 string
			mean, median, p25, p75 sql.NullFloat64
		)
		if err := rows.Scan(&year, &sector, &count, &mean, &median, &p25, &p75); err != nil {
			return nil, eris.Wrapf(err, "lake: scan parquet row %s", path)
		}
		r.Year = int(year)
		r.Sector = ipeds.Sector(sector)
		r.InstitutionCount = int(count)
		r.MeanRate = floatPtr(mean)
		r.MedianRate = floatPtr(median)
		r.P25Rate = floatPtr(p25)
		r.P75Rate = floatPtr(p75)
		out = append(out, r)
	}
	return out, eris.Wrapf(rows.Err(), "lake: read parquet %s", path)
}

// write stages rows into a fresh table and copies it to parquet.
func (s *Store) write(ctx context.Context, path, schema, insert string, n int, rowAt func(int) []any) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return eris.Wrap(err, "lake: acquire connection")
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE staging (%s)", schema)); err != nil {
		return eris.Wrap(err, "lake: create staging table")
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "DROP TABLE IF EXISTS staging")

	stmt, err := conn.PrepareContext(ctx, insert)
	if err != nil {
		return eris.Wrap(err, "lake: prepare insert")
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, rowAt(i)...); err != nil {
			return eris.Wrapf(err, "lake: insert row %d", i)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "lake: create output dir for %s", path)
	}
	tmp := path + ".tmp"
	copySQL := fmt.Sprintf("COPY staging TO %s (FORMAT PARQUET, COMPRESSION ZSTD)", quote(tmp))
	if _, err := conn.ExecContext(ctx, copySQL); err != nil {
		return eris.Wrapf(err, "lake: copy to parquet %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return eris.Wrapf(err, "lake: finalize %s", path)
	}
	return nil
}

// quote renders a path as a DuckDB single-quoted string literal.
func quote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", "''") + "'"
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
