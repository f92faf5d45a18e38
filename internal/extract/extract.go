package extract

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
	"github.com/campusmetrics/ipeds-cli/internal/reader"
	"github.com/campusmetrics/ipeds-cli/internal/validate"
)

// Result carries the canonical long records plus the recoverable
// findings accumulated while producing them.
type Result struct {
	Records []ipeds.LongRecord
	Summary validate.Summary
}

// Extractor converts a wide table into long records. One instance per
// run; LoadTS is injected so repeated runs over the same inputs differ
// only in timestamps.
type Extractor struct {
	LoadTS time.Time
}

// New returns an Extractor stamping records with the given load time.
func New(loadTS time.Time) *Extractor {
	return &Extractor{LoadTS: loadTS.UTC()}
}

// Extract resolves every (institution, year) to at most one record via
// the precedence ladder, applies the range check, and asserts the
// uniqueness invariant. Output is sorted by (unitid, year).
func (e *Extractor) Extract(t *reader.WideTable) (*Result, error) {
	log := zap.L().With(zap.String("component", "extract"))

	keys := parseHeaders(t.Header)
	if len(keys) == 0 {
		return nil, eris.New("extract: no DRVGR/DFR columns detected in wide extract")
	}

	// Candidate collection follows header order so resolution is
	// deterministic regardless of map iteration.
	indexes := make([]int, 0, len(keys))
	for idx := range keys {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	res := &Result{Summary: validate.Summary{DroppedInputRows: t.DroppedRows}}

	for _, row := range t.Rows {
		byYear := map[int][]Candidate{}
		var years []int
		for _, idx := range indexes {
			key := keys[idx]
			if idx >= len(row.Cells) {
				continue
			}
			raw := strings.TrimSpace(row.Cells[idx])
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				// A non-numeric cell supplies no value; the year stays
				// absent unless another column covers it.
				res.Summary.UnparseableValues++
				continue
			}
			if _, seen := byYear[key.Year]; !seen {
				years = append(years, key.Year)
			}
			byYear[key.Year] = append(byYear[key.Year], Candidate{Key: key, Value: v})
		}

		sort.Ints(years)
		for _, year := range years {
			winner, ok := Resolve(byYear[year])
			if !ok {
				continue
			}

			rec := ipeds.LongRecord{
				UnitID:          row.UnitID,
				Year:            year,
				InstitutionName: row.Name,
				SourceFlag:      ipeds.SourceFallback,
				IsRevised:       winner.Key.Revised,
				CohortReference: ipeds.CohortReference(year),
				LoadTS:          e.LoadTS,
			}
			if winner.Key.Family == FamilyOfficial {
				rec.SourceFlag = ipeds.SourceOfficial
			}

			if validate.InRange(winner.Value) {
				v := winner.Value
				rec.GradRate = &v
			} else {
				// Null, never clamp: a repaired value would misrepresent
				// the source.
				res.Summary.OutOfRangeValues++
				log.Warn("grad rate outside [0,100], nulled",
					zap.Int64("unitid", row.UnitID),
					zap.Int("year", year),
					zap.Float64("value", winner.Value),
				)
			}

			res.Records = append(res.Records, rec)
		}
	}

	sort.Slice(res.Records, func(i, j int) bool {
		a, b := res.Records[i], res.Records[j]
		if a.UnitID != b.UnitID {
			return a.UnitID < b.UnitID
		}
		return a.Year < b.Year
	})

	if err := validate.Uniqueness(res.Records); err != nil {
		return nil, err
	}

	log.Info("extraction complete",
		zap.Int("records", len(res.Records)),
		zap.Int("dropped_rows", res.Summary.DroppedInputRows),
		zap.Int("out_of_range", res.Summary.OutOfRangeValues),
	)
	return res, nil
}

// parseHeaders maps wide column indexes to their parsed source keys.
func parseHeaders(header []string) map[int]SourceKey {
	keys := make(map[int]SourceKey)
	for i, name := range header {
		if key, ok := ParseHeader(name); ok {
			keys[i] = key
		}
	}
	return keys
}
