// Package ipeds holds the canonical data model for the graduation-rate
// pipeline: the long-format record, its categorical enumerations, and
// the derived summary row.
package ipeds

import (
	"fmt"
	"time"
)

// SourceFlag identifies which IPEDS source family produced a value.
type SourceFlag string

const (
	// SourceOfficial is the derived graduation-rate family (DRVGR).
	SourceOfficial SourceFlag = "official"
	// SourceFallback is the provisional feedback-report family (DFR).
	SourceFallback SourceFlag = "fallback"
)

// LongRecord is one resolved (institution, cohort year) measurement.
// Categorical fields are empty until metadata enrichment.
type LongRecord struct {
	UnitID          int64      `json:"unitid"`
	Year            int        `json:"year"`
	InstitutionName string     `json:"instnm"`
	Control         Control    `json:"control"`
	Level           Level      `json:"level"`
	State           string     `json:"state"`
	Sector          Sector     `json:"sector"`
	GradRate        *float64   `json:"grad_rate_150"` // nil when the source value failed the range check
	SourceFlag      SourceFlag `json:"source_flag"`
	IsRevised       bool       `json:"is_revised"`
	CohortReference string     `json:"cohort_reference"`
	LoadTS          time.Time  `json:"load_ts"`
}

// Key returns the logical identity of the measurement. After precedence
// collapse no two records may share a key.
func (r LongRecord) Key() RecordKey {
	return RecordKey{
		UnitID:          r.UnitID,
		Year:            r.Year,
		CohortReference: r.CohortReference,
		SourceFlag:      r.SourceFlag,
	}
}

// RecordKey is the uniqueness key of a LongRecord.
type RecordKey struct {
	UnitID          int64
	Year            int
	CohortReference string
	SourceFlag      SourceFlag
}

func (k RecordKey) String() string {
	return fmt.Sprintf("unitid=%d year=%d cohort=%q source=%s", k.UnitID, k.Year, k.CohortReference, k.SourceFlag)
}

// CohortReference builds the human-readable cohort descriptor for a year.
func CohortReference(year int) string {
	return fmt.Sprintf("%d cohort, total cohort", year)
}

// SummaryRow is one (year, sector) aggregate over non-null grad rates.
// Statistics are nil when the group has no non-null values; the group
// still appears so consumers can detect coverage gaps.
type SummaryRow struct {
	Year             int      `json:"year"`
	Sector           Sector   `json:"sector"`
	InstitutionCount int      `json:"institution_count"`
	MeanRate         *float64 `json:"avg_grad_rate"`
	MedianRate       *float64 `json:"median_grad_rate"`
	P25Rate          *float64 `json:"p25_grad_rate"`
	P75Rate          *float64 `json:"p75_grad_rate"`
}
