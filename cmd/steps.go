package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/campusmetrics/ipeds-cli/internal/build"
	"github.com/campusmetrics/ipeds-cli/internal/enrich"
	"github.com/campusmetrics/ipeds-cli/internal/extract"
	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
	"github.com/campusmetrics/ipeds-cli/internal/lake"
	"github.com/campusmetrics/ipeds-cli/internal/reader"
	"github.com/campusmetrics/ipeds-cli/internal/runlog"
	"github.com/campusmetrics/ipeds-cli/internal/validate"
)

// Intermediate artifacts written into the output directory so each step
// is independently re-runnable.
const (
	rawLongFile         = "grad_rates_long_raw.parquet"
	extractReportFile   = "extract_report.json"
	missingMetadataFile = "missing_metadata.json"
)

// stepReport is the sidecar record a step leaves behind for the build
// step to fold into the final provenance.
type stepReport struct {
	Input      build.InputFile  `json:"input"`
	Rows       int              `json:"rows"`
	Validation validate.Summary `json:"validation"`
}

// enrichReport is the missing-metadata sidecar.
type enrichReport struct {
	Input           build.InputFile  `json:"input"`
	MatchedEntities int              `json:"matched_entities"`
	MissingEntities int              `json:"missing_entities"`
	MissingIDs      []int64          `json:"missing_ids,omitempty"`
	Validation      validate.Summary `json:"validation"`
}

// runExtract reads the wide extract, resolves it into long records, and
// persists the raw long table plus its report.
func runExtract(ctx context.Context, store *lake.Store, widePath, outDir string, loadTS time.Time) (*extract.Result, error) {
	input, err := build.ChecksumFile(widePath)
	if err != nil {
		return nil, err
	}

	wide, err := reader.ReadWide(widePath)
	if err != nil {
		return nil, err
	}

	res, err := extract.New(loadTS).Extract(wide)
	if err != nil {
		return nil, err
	}

	if err := store.WriteLong(ctx, filepath.Join(outDir, rawLongFile), res.Records); err != nil {
		return nil, err
	}
	report := stepReport{Input: input, Rows: len(res.Records), Validation: res.Summary}
	if err := writeJSON(filepath.Join(outDir, extractReportFile), report); err != nil {
		return nil, err
	}
	return res, nil
}

// runEnrich loads the raw long table, joins metadata, and persists the
// enriched long table plus the missing-metadata report.
func runEnrich(ctx context.Context, store *lake.Store, metaPath, outDir string) ([]ipeds.LongRecord, *enrich.Report, error) {
	meta, err := reader.ReadInstitutions(metaPath)
	if err != nil {
		return nil, nil, err
	}
	input, err := build.ChecksumFile(metaPath)
	if err != nil {
		return nil, nil, err
	}

	records, err := store.ReadLong(ctx, filepath.Join(outDir, rawLongFile))
	if err != nil {
		return nil, nil, err
	}

	enriched, report, err := enrich.New(meta.Institutions).Enrich(records)
	if err != nil {
		return nil, nil, err
	}
	report.Summary.DroppedInputRows += meta.DroppedRows

	if err := store.WriteLong(ctx, filepath.Join(outDir, build.LongFile), enriched); err != nil {
		return nil, nil, err
	}
	sidecar := enrichReport{
		Input:           input,
		MatchedEntities: report.MatchedEntities,
		MissingEntities: report.MissingEntities,
		MissingIDs:      report.MissingIDs,
		Validation:      report.Summary,
	}
	if err := writeJSON(filepath.Join(outDir, missingMetadataFile), sidecar); err != nil {
		return nil, nil, err
	}
	return enriched, report, nil
}

// runBuild loads the enriched long table and writes the full output set.
// Sidecar reports from earlier steps, when present, contribute their
// input identifiers and findings to the provenance record.
func runBuild(ctx context.Context, store *lake.Store, outDir string, buildTS time.Time) (*build.Provenance, error) {
	records, err := store.ReadLong(ctx, filepath.Join(outDir, build.LongFile))
	if err != nil {
		return nil, err
	}

	var inputs []build.InputFile
	var summary validate.Summary

	var er stepReport
	if ok, err := readJSON(filepath.Join(outDir, extractReportFile), &er); err != nil {
		return nil, err
	} else if ok {
		inputs = append(inputs, er.Input)
		summary.Merge(er.Validation)
	}
	var nr enrichReport
	if ok, err := readJSON(filepath.Join(outDir, missingMetadataFile), &nr); err != nil {
		return nil, err
	} else if ok {
		inputs = append(inputs, nr.Input)
		summary.Merge(nr.Validation)
	}

	return build.NewBuilder(store, outDir, buildTS).Build(ctx, records, inputs, summary)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "cmd: marshal %s", path)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "cmd: write %s", path)
	}
	return nil
}

// readJSON loads path into v, reporting ok=false when the file does not
// exist.
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "cmd: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, eris.Wrapf(err, "cmd: parse %s", path)
	}
	return true, nil
}

// withRunLog records the step in the run-history store around fn. Run
// log failures are logged, never fatal: history is an audit aid, not a
// correctness dependency.
func withRunLog(ctx context.Context, step string, fn func() (int64, error)) error {
	store, err := runlog.Open(ctx, cfg.RunLog.Driver, cfg.RunLog.DSN)
	if err != nil {
		zap.L().Warn("run log unavailable", zap.String("step", step), zap.Error(err))
		_, err := fn()
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		zap.L().Warn("run log migrate failed", zap.Error(err))
	}

	id, err := store.Start(ctx, step)
	if err != nil {
		zap.L().Warn("run log start failed", zap.Error(err))
		_, err := fn()
		return err
	}

	rows, err := fn()
	if err != nil {
		if logErr := store.Fail(ctx, id, err.Error()); logErr != nil {
			zap.L().Warn("run log fail-mark failed", zap.Error(logErr))
		}
		return err
	}
	if logErr := store.Complete(ctx, id, rows); logErr != nil {
		zap.L().Warn("run log complete-mark failed", zap.Error(logErr))
	}
	return nil
}
