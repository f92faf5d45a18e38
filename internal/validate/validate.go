// Package validate enforces the pipeline's data-quality invariants.
// Checks split into two classes: fatal errors (returned as errors and
// expected to abort the run) and recoverable findings (counted into a
// Summary that ends up in the provenance record).
package validate

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
)

// Summary accumulates recoverable data-quality findings across a run.
// It is embedded verbatim in the provenance record.
type Summary struct {
	DroppedInputRows   int     `json:"dropped_input_rows"`
	UnparseableValues  int     `json:"unparseable_values"`
	OutOfRangeValues   int     `json:"out_of_range_values"`
	UnknownControlIDs  []int64 `json:"unknown_control_ids,omitempty"`
	UnknownLevelIDs    []int64 `json:"unknown_level_ids,omitempty"`
	UnknownSectorIDs   []int64 `json:"unknown_sector_ids,omitempty"`
	UnmatchedEntities  int     `json:"unmatched_entities"`
	UnmatchedEntityIDs []int64 `json:"unmatched_entity_ids,omitempty"`
}

// Merge folds another summary into s.
func (s *Summary) Merge(other Summary) {
	s.DroppedInputRows += other.DroppedInputRows
	s.UnparseableValues += other.UnparseableValues
	s.OutOfRangeValues += other.OutOfRangeValues
	s.UnknownControlIDs = mergeIDs(s.UnknownControlIDs, other.UnknownControlIDs)
	s.UnknownLevelIDs = mergeIDs(s.UnknownLevelIDs, other.UnknownLevelIDs)
	s.UnknownSectorIDs = mergeIDs(s.UnknownSectorIDs, other.UnknownSectorIDs)
	s.UnmatchedEntities += other.UnmatchedEntities
	s.UnmatchedEntityIDs = mergeIDs(s.UnmatchedEntityIDs, other.UnmatchedEntityIDs)
}

// Issues returns the total count of recoverable findings.
func (s Summary) Issues() int {
	return s.DroppedInputRows + s.UnparseableValues + s.OutOfRangeValues +
		len(s.UnknownControlIDs) + len(s.UnknownLevelIDs) + len(s.UnknownSectorIDs) +
		s.UnmatchedEntities
}

func mergeIDs(a, b []int64) []int64 {
	if len(b) == 0 {
		return a
	}
	seen := make(map[int64]struct{}, len(a)+len(b))
	out := make([]int64, 0, len(a)+len(b))
	for _, id := range append(append([]int64{}, a...), b...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InRange reports whether a graduation rate is within [0, 100].
// Out-of-range values are nulled by the caller, never clamped.
func InRange(v float64) bool {
	return v >= 0 && v <= 100
}

// Uniqueness verifies that no two records share the logical measurement
// key (unitid, year, cohort_reference, source_flag). A violation means
// precedence collapse failed and is fatal.
func Uniqueness(records []ipeds.LongRecord) error {
	seen := make(map[ipeds.RecordKey]struct{}, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			return eris.Errorf("validate: duplicate measurement key: %s", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// Referential verifies that every record either carries enriched
// categoricals or is listed in the missing-metadata report.
func Referential(records []ipeds.LongRecord, missingIDs []int64) error {
	missing := make(map[int64]struct{}, len(missingIDs))
	for _, id := range missingIDs {
		missing[id] = struct{}{}
	}
	for _, r := range records {
		if r.Control != "" {
			continue
		}
		if _, ok := missing[r.UnitID]; !ok {
			return eris.Errorf("validate: unitid %d has no metadata and is absent from the missing-metadata report", r.UnitID)
		}
	}
	return nil
}

// Completeness verifies the latest-by-entity projection covers exactly
// the distinct entities of the long table.
func Completeness(long, latest []ipeds.LongRecord) error {
	distinct := make(map[int64]struct{}, len(latest))
	for _, r := range long {
		distinct[r.UnitID] = struct{}{}
	}
	if len(latest) != len(distinct) {
		return eris.Errorf("validate: latest-by-entity has %d rows, long table has %d distinct entities", len(latest), len(distinct))
	}
	return nil
}

// ClosedEnums verifies every enriched record draws its categoricals from
// the closed enumerations. Empty values are permitted: entities in the
// missing-metadata report keep null categoricals.
func ClosedEnums(records []ipeds.LongRecord) error {
	for _, r := range records {
		if r.Control == "" && r.Level == "" && r.Sector == "" {
			continue
		}
		if !r.Control.Known() {
			return eris.Errorf("validate: unitid %d year %d: control %q outside closed set", r.UnitID, r.Year, r.Control)
		}
		if !r.Level.Known() {
			return eris.Errorf("validate: unitid %d year %d: level %q outside closed set", r.UnitID, r.Year, r.Level)
		}
		if !r.Sector.Known() {
			return eris.Errorf("validate: unitid %d year %d: sector %q outside closed set", r.UnitID, r.Year, r.Sector)
		}
	}
	return nil
}
