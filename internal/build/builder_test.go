package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmetrics/ipeds-cli/internal/enrich"
	"github.com/campusmetrics/ipeds-cli/internal/extract"
	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
	"github.com/campusmetrics/ipeds-cli/internal/lake"
	"github.com/campusmetrics/ipeds-cli/internal/reader"
	"github.com/campusmetrics/ipeds-cli/internal/validate"
)

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()
	store, err := lake.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	dir := t.TempDir()
	buildTS := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	recs := []ipeds.LongRecord{
		longRec(1, 2020, ipeds.SourceOfficial, false),
		longRec(1, 2021, ipeds.SourceOfficial, true),
		longRec(2, 2019, ipeds.SourceFallback, false),
	}
	inputs := []InputFile{{Path: "raw.csv", SHA256: "deadbeef"}}
	summary := validate.Summary{OutOfRangeValues: 1}

	prov, err := NewBuilder(store, dir, buildTS).Build(ctx, recs, inputs, summary)
	require.NoError(t, err)

	assert.NotEmpty(t, prov.RunID)
	assert.Equal(t, buildTS, prov.BuildTS)
	assert.Equal(t, 3, prov.LongRows)
	assert.Equal(t, 2, prov.LatestRows)
	assert.Equal(t, []int{2019, 2021}, prov.YearRange)
	assert.Equal(t, inputs, prov.Inputs)
	assert.Equal(t, summary, prov.Validation)
	assert.True(t, prov.Complete)

	for _, name := range []string{LongFile, LatestFile, SummaryFile, ProvenanceFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// The on-disk record matches what Build returned, completion included.
	onDisk, err := ReadProvenance(filepath.Join(dir, ProvenanceFile))
	require.NoError(t, err)
	assert.Equal(t, prov, onDisk)

	// The written long table round-trips.
	back, err := store.ReadLong(ctx, filepath.Join(dir, LongFile))
	require.NoError(t, err)
	require.Len(t, back, 3)
	assert.Equal(t, int64(1), back[0].UnitID)
	assert.Equal(t, 2020, back[0].Year)

	latest, err := store.ReadLong(ctx, filepath.Join(dir, LatestFile))
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 2021, latest[0].Year)
	assert.Equal(t, 2019, latest[1].Year)
}

func TestBuilder_Rerun(t *testing.T) {
	// Re-running over the same inputs replaces the output set wholesale
	// and yields identical row counts.
	ctx := context.Background()
	store, err := lake.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	dir := t.TempDir()
	buildTS := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	recs := []ipeds.LongRecord{
		longRec(1, 2020, ipeds.SourceOfficial, false),
		longRec(2, 2021, ipeds.SourceOfficial, false),
	}

	first, err := NewBuilder(store, dir, buildTS).Build(ctx, recs, nil, validate.Summary{})
	require.NoError(t, err)
	second, err := NewBuilder(store, dir, buildTS).Build(ctx, recs, nil, validate.Summary{})
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.LongRows, second.LongRows)
	assert.Equal(t, first.LatestRows, second.LatestRows)
	assert.Equal(t, first.SummaryRows, second.SummaryRows)
	assert.Equal(t, first.YearRange, second.YearRange)
}

func TestBuilder_IdempotentOverIdenticalInputs(t *testing.T) {
	// Two full passes (read, extract, enrich, build) over the same raw
	// files with pinned timestamps must yield content-identical long,
	// latest, and summary tables.
	ctx := context.Background()
	store, err := lake.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	inDir := t.TempDir()
	widePath := filepath.Join(inDir, "wide.csv")
	metaPath := filepath.Join(inDir, "hd.csv")
	wideCSV := "UnitID,Institution Name,rate (DRVGR2021),rate (DRVGR2021_RV),rate (DFR2020)\n" +
		"222200,Beta,48,,33\n" +
		"111100,Alpha,62.5,64,\n"
	metaCSV := "UnitID,Institution Name,STATE,CONTROL,LEVEL,SECTOR\n" +
		"111100,Alpha,CA,1,1,1\n"
	require.NoError(t, os.WriteFile(widePath, []byte(wideCSV), 0o644))
	require.NoError(t, os.WriteFile(metaPath, []byte(metaCSV), 0o644))

	loadTS := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	buildTS := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	pass := func(dir string) (long, latest []ipeds.LongRecord, summary []ipeds.SummaryRow) {
		wide, err := reader.ReadWide(widePath)
		require.NoError(t, err)
		res, err := extract.New(loadTS).Extract(wide)
		require.NoError(t, err)
		meta, err := reader.ReadInstitutions(metaPath)
		require.NoError(t, err)
		enriched, _, err := enrich.New(meta.Institutions).Enrich(res.Records)
		require.NoError(t, err)

		_, err = NewBuilder(store, dir, buildTS).Build(ctx, enriched, nil, res.Summary)
		require.NoError(t, err)

		long, err = store.ReadLong(ctx, filepath.Join(dir, LongFile))
		require.NoError(t, err)
		latest, err = store.ReadLong(ctx, filepath.Join(dir, LatestFile))
		require.NoError(t, err)
		summary, err = store.ReadSummary(ctx, filepath.Join(dir, SummaryFile))
		require.NoError(t, err)
		return long, latest, summary
	}

	long1, latest1, summary1 := pass(t.TempDir())
	long2, latest2, summary2 := pass(t.TempDir())

	assert.Equal(t, long1, long2)
	assert.Equal(t, latest1, latest2)
	assert.Equal(t, summary1, summary2)

	// Sanity on the content itself: three resolved measurements, one
	// entity without metadata, revised official winning 2021 for Alpha.
	require.Len(t, long1, 3)
	assert.Equal(t, int64(111100), long1[0].UnitID)
	assert.Equal(t, 64.0, *long1[0].GradRate)
	assert.True(t, long1[0].IsRevised)
	require.Len(t, latest1, 2)
}

func TestBuilder_EmptyInput(t *testing.T) {
	ctx := context.Background()
	store, err := lake.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	dir := t.TempDir()
	prov, err := NewBuilder(store, dir, time.Now()).Build(ctx, nil, nil, validate.Summary{})
	require.NoError(t, err)
	assert.Zero(t, prov.LongRows)
	assert.Zero(t, prov.LatestRows)
	assert.Nil(t, prov.YearRange)
	assert.True(t, prov.Complete)
}

func TestYearRange(t *testing.T) {
	assert.Nil(t, yearRange(nil))
	recs := []ipeds.LongRecord{
		longRec(1, 2015, ipeds.SourceOfficial, false),
		longRec(1, 2004, ipeds.SourceOfficial, false),
		longRec(1, 2023, ipeds.SourceOfficial, false),
	}
	assert.Equal(t, []int{2004, 2023}, yearRange(recs))
}
