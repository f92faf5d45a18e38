package build

import (
	"sort"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
)

// LatestByEntity projects one record per institution: the maximum year,
// with ties broken by preferring official over fallback, then revised
// over unrevised, then the lower cohort reference so output order is
// reproducible. Rebuilt wholesale each run, never mutated.
func LatestByEntity(records []ipeds.LongRecord) []ipeds.LongRecord {
	best := make(map[int64]ipeds.LongRecord, len(records))
	for _, r := range records {
		cur, ok := best[r.UnitID]
		if !ok || beats(r, cur) {
			best[r.UnitID] = r
		}
	}

	out := make([]ipeds.LongRecord, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitID < out[j].UnitID })
	return out
}

func beats(a, b ipeds.LongRecord) bool {
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	if a.SourceFlag != b.SourceFlag {
		return a.SourceFlag == ipeds.SourceOfficial
	}
	if a.IsRevised != b.IsRevised {
		return a.IsRevised
	}
	return a.CohortReference < b.CohortReference
}
