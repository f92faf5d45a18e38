// Package extract converts wide IPEDS graduation-rate extracts into the
// canonical long format. Column headers encode the source table, cohort
// year, and revision status; extraction parses them into explicit keys
// and collapses competing columns with an ordered precedence ladder.
package extract

import (
	"regexp"
	"strconv"
)

// Family identifies the IPEDS source table a column came from.
type Family int

const (
	// FamilyOfficial is the derived graduation-rate table (DRVGR).
	FamilyOfficial Family = iota
	// FamilyFallback is the provisional feedback-report table (DFR).
	FamilyFallback
)

func (f Family) String() string {
	if f == FamilyOfficial {
		return "DRVGR"
	}
	return "DFR"
}

// SourceKey is the parsed identity of one wide value column.
type SourceKey struct {
	Family  Family
	Year    int
	Revised bool
}

// Headers look like "Graduation rate, total cohort (DRVGR2021)" or
// "... (DFR2019_RV)". The parenthesized tag is the schema; everything
// before it is display text.
var headerPattern = regexp.MustCompile(`\((DRVGR|DFR)(\d{4})(_RV)?\)`)

// ParseHeader extracts the SourceKey from a wide column name. ok is
// false for non-value columns (identifiers, unrelated metrics).
func ParseHeader(name string) (key SourceKey, ok bool) {
	m := headerPattern.FindStringSubmatch(name)
	if m == nil {
		return SourceKey{}, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return SourceKey{}, false
	}
	family := FamilyFallback
	if m[1] == "DRVGR" {
		family = FamilyOfficial
	}
	return SourceKey{Family: family, Year: year, Revised: m[3] == "_RV"}, true
}
