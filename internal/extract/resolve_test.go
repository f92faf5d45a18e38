package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cand(family Family, year int, revised bool, v float64) Candidate {
	return Candidate{Key: SourceKey{Family: family, Year: year, Revised: revised}, Value: v}
}

func TestResolve_OfficialBeatsFallback(t *testing.T) {
	// Fallback listed first: ordering in the input must not matter.
	winner, ok := Resolve([]Candidate{
		cand(FamilyFallback, 2020, false, 50),
		cand(FamilyOfficial, 2020, false, 55),
	})
	assert.True(t, ok)
	assert.Equal(t, FamilyOfficial, winner.Key.Family)
	assert.Equal(t, 55.0, winner.Value)
}

func TestResolve_RevisedBeatsOriginal(t *testing.T) {
	winner, ok := Resolve([]Candidate{
		cand(FamilyOfficial, 2020, false, 55),
		cand(FamilyOfficial, 2020, true, 58),
	})
	assert.True(t, ok)
	assert.True(t, winner.Key.Revised)
	assert.Equal(t, 58.0, winner.Value)
}

func TestResolve_FullLadder(t *testing.T) {
	// E1: official=55, official-revised=58, fallback=50 → revised official.
	winner, ok := Resolve([]Candidate{
		cand(FamilyFallback, 2020, false, 50),
		cand(FamilyOfficial, 2020, false, 55),
		cand(FamilyOfficial, 2020, true, 58),
	})
	assert.True(t, ok)
	assert.Equal(t, 58.0, winner.Value)
	assert.Equal(t, FamilyOfficial, winner.Key.Family)
	assert.True(t, winner.Key.Revised)
}

func TestResolve_FallbackRevisedBeatsFallback(t *testing.T) {
	winner, ok := Resolve([]Candidate{
		cand(FamilyFallback, 2019, false, 40),
		cand(FamilyFallback, 2019, true, 42),
	})
	assert.True(t, ok)
	assert.Equal(t, 42.0, winner.Value)
}

func TestResolve_FallbackOnly(t *testing.T) {
	// E2: only a fallback column.
	winner, ok := Resolve([]Candidate{cand(FamilyFallback, 2019, false, 40)})
	assert.True(t, ok)
	assert.Equal(t, FamilyFallback, winner.Key.Family)
	assert.False(t, winner.Key.Revised)
	assert.Equal(t, 40.0, winner.Value)
}

func TestResolve_NoCandidates(t *testing.T) {
	// E3: absent year resolves to nothing, not to a null row.
	_, ok := Resolve(nil)
	assert.False(t, ok)
}
