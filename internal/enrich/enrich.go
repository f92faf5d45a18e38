// Package enrich joins institutional characteristics onto the canonical
// long table and maps raw HD classification codes into the closed
// enumerations. Institutions without metadata keep null categoricals and
// are reported, never dropped: their grad rates still matter downstream.
package enrich

import (
	"sort"

	"go.uber.org/zap"

	"github.com/campusmetrics/ipeds-cli/internal/ipeds"
	"github.com/campusmetrics/ipeds-cli/internal/reader"
	"github.com/campusmetrics/ipeds-cli/internal/validate"
)

// Report describes the outcome of one enrichment pass.
type Report struct {
	MatchedEntities int     `json:"matched_entities"`
	MissingEntities int     `json:"missing_entities"`
	MissingIDs      []int64 `json:"missing_ids,omitempty"`
	Summary         validate.Summary
}

// Enricher holds the metadata lookup for one run.
type Enricher struct {
	byID map[int64]reader.Institution
}

// New builds an Enricher from the metadata extract. Duplicate unitids
// keep the first occurrence, matching a many-to-one join.
func New(insts []reader.Institution) *Enricher {
	byID := make(map[int64]reader.Institution, len(insts))
	for _, inst := range insts {
		if _, ok := byID[inst.UnitID]; !ok {
			byID[inst.UnitID] = inst
		}
	}
	return &Enricher{byID: byID}
}

// Enrich left-joins the records against the metadata table. Unknown
// classification codes map to Unknown and are counted per entity; the
// referential invariant is asserted before returning.
func (e *Enricher) Enrich(records []ipeds.LongRecord) ([]ipeds.LongRecord, *Report, error) {
	log := zap.L().With(zap.String("component", "enrich"))

	report := &Report{}
	matched := map[int64]struct{}{}
	missing := map[int64]struct{}{}
	unknownControl := map[int64]struct{}{}
	unknownLevel := map[int64]struct{}{}
	unknownSector := map[int64]struct{}{}

	out := make([]ipeds.LongRecord, len(records))
	for i, rec := range records {
		inst, ok := e.byID[rec.UnitID]
		if !ok {
			missing[rec.UnitID] = struct{}{}
			rec.Control, rec.Level, rec.Sector, rec.State = "", "", "", ""
			out[i] = rec
			continue
		}
		matched[rec.UnitID] = struct{}{}

		if rec.InstitutionName == "" {
			rec.InstitutionName = inst.Name
		}
		rec.State = inst.State

		var known bool
		rec.Control, known = ipeds.ControlFromCode(inst.ControlCode)
		if !known {
			unknownControl[rec.UnitID] = struct{}{}
		}
		rec.Level, known = ipeds.LevelFromCode(inst.LevelCode)
		if !known {
			unknownLevel[rec.UnitID] = struct{}{}
		}
		rec.Sector, known = ipeds.SectorFromCode(inst.SectorCode)
		if !known {
			unknownSector[rec.UnitID] = struct{}{}
		}

		out[i] = rec
	}

	report.MatchedEntities = len(matched)
	report.MissingEntities = len(missing)
	report.MissingIDs = sortedIDs(missing)
	report.Summary = validate.Summary{
		UnknownControlIDs:  sortedIDs(unknownControl),
		UnknownLevelIDs:    sortedIDs(unknownLevel),
		UnknownSectorIDs:   sortedIDs(unknownSector),
		UnmatchedEntities:  len(missing),
		UnmatchedEntityIDs: report.MissingIDs,
	}

	if err := validate.Referential(out, report.MissingIDs); err != nil {
		return nil, nil, err
	}
	if err := validate.ClosedEnums(out); err != nil {
		return nil, nil, err
	}

	if report.MissingEntities > 0 {
		log.Warn("entities missing metadata",
			zap.Int("count", report.MissingEntities),
		)
	}
	log.Info("enrichment complete",
		zap.Int("records", len(out)),
		zap.Int("matched_entities", report.MatchedEntities),
		zap.Int("missing_entities", report.MissingEntities),
	)
	return out, report, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
