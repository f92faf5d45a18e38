package build

import (
	"sort"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
)

// SummaryByYear aggregates grad rates by (year, sector). Records with
// null sector group under Unknown. A group whose records all carry null
// rates still appears with count 0 and null statistics so consumers can
// see the coverage gap. Output is sorted by (year, sector).
func SummaryByYear(records []ipeds.LongRecord) []ipeds.SummaryRow {
	type groupKey struct {
		year   int
		sector ipeds.Sector
	}
	type group struct {
		entities map[int64]struct{}
		values   []float64
	}

	groups := map[groupKey]*group{}
	for _, r := range records {
		sector := r.Sector
		if sector == "" {
			sector = ipeds.SectorUnknown
		}
		k := groupKey{year: r.Year, sector: sector}
		g, ok := groups[k]
		if !ok {
			g = &group{entities: map[int64]struct{}{}}
			groups[k] = g
		}
		if r.GradRate != nil {
			g.entities[r.UnitID] = struct{}{}
			g.values = append(g.values, *r.GradRate)
		}
	}

	out := make([]ipeds.SummaryRow, 0, len(groups))
	for k, g := range groups {
		row := ipeds.SummaryRow{
			Year:             k.year,
			Sector:           k.sector,
			InstitutionCount: len(g.entities),
		}
		row.MeanRate, row.MedianRate, row.P25Rate, row.P75Rate = descriptiveStats(g.values)
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
