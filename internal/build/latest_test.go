package build

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
)

func longRec(unitID int64, year int, source ipeds.SourceFlag, revised bool) ipeds.LongRecord {
	v := 60.0
	return ipeds.LongRecord{
		UnitID:          unitID,
		Year:            year,
		GradRate:        &v,
		SourceFlag:      source,
		IsRevised:       revised,
		CohortReference: ipeds.CohortReference(year),
		LoadTS:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLatestByEntity_MaxYearWins(t *testing.T) {
	recs := []ipeds.LongRecord{
		longRec(1, 2019, ipeds.SourceOfficial, false),
		longRec(1, 2021, ipeds.SourceFallback, false),
		longRec(1, 2020, ipeds.SourceOfficial, true),
	}

	latest := LatestByEntity(recs)
	require.Len(t, latest, 1)
	assert.Equal(t, 2021, latest[0].Year)
	// A newer fallback beats an older official value outright.
	assert.Equal(t, ipeds.SourceFallback, latest[0].SourceFlag)
}

func TestLatestByEntity_TieBreaks(t *testing.T) {
	// Same year: official beats fallback, revised beats unrevised.
	recs := []ipeds.LongRecord{
		longRec(1, 2020, ipeds.SourceFallback, true),
		longRec(1, 2020, ipeds.SourceOfficial, false),
	}
	latest := LatestByEntity(recs)
	require.Len(t, latest, 1)
	assert.Equal(t, ipeds.SourceOfficial, latest[0].SourceFlag)

	recs = []ipeds.LongRecord{
		longRec(2, 2020, ipeds.SourceOfficial, false),
		longRec(2, 2020, ipeds.SourceOfficial, true),
	}
	latest = LatestByEntity(recs)
	require.Len(t, latest, 1)
	assert.True(t, latest[0].IsRevised)
}

func TestLatestByEntity_OnePerEntitySorted(t *testing.T) {
	recs := []ipeds.LongRecord{
		longRec(30, 2020, ipeds.SourceOfficial, false),
		longRec(10, 2021, ipeds.SourceOfficial, false),
		longRec(20, 2019, ipeds.SourceFallback, false),
		longRec(10, 2018, ipeds.SourceOfficial, false),
	}

	latest := LatestByEntity(recs)
	require.Len(t, latest, 3)
	assert.Equal(t, int64(10), latest[0].UnitID)
	assert.Equal(t, 2021, latest[0].Year)
	assert.Equal(t, int64(20), latest[1].UnitID)
	assert.Equal(t, int64(30), latest[2].UnitID)
}

func TestLatestByEntity_Empty(t *testing.T) {
	assert.Empty(t, LatestByEntity(nil))
}
