package extract

// Candidate is one parsed wide cell competing to supply the value for a
// (unitid, year) measurement.
type Candidate struct {
	Key   SourceKey
	Value float64
}

// precedence is the explicit resolution ladder. Official data beats
// fallback data even when the fallback is more recent; within a family
// a revised column supersedes the original publication. This ordering
// is intentional and must not be replaced by a last-write-wins merge.
var precedence = []struct {
	family  Family
	revised bool
}{
	{FamilyOfficial, true},
	{FamilyOfficial, false},
	{FamilyFallback, true},
	{FamilyFallback, false},
}

// Resolve walks the precedence ladder over the candidates for a single
// year and returns the first match. ok is false when no candidate
// exists, which means the year is absent for the entity. Absent years
// emit no row at all, unlike out-of-range values which emit a null.
func Resolve(candidates []Candidate) (Candidate, bool) {
	for _, step := range precedence {
		for _, c := range candidates {
			if c.Key.Family == step.family && c.Key.Revised == step.revised {
				return c, true
			}
		}
	}
	return Candidate{}, false
}
