package build

import "sort"

// descriptiveStats returns mean, median, p25, and p75 of the values
// using linear interpolation between order statistics. All nil when the
// input is empty.
func descriptiveStats(values []float64) (mean, median, p25, p75 *float64) {
	if len(values) == 0 {
		return nil, nil, nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	m := sum / float64(len(sorted))

	med := quantile(sorted, 0.5)
	q25 := quantile(sorted, 0.25)
	q75 := quantile(sorted, 0.75)
	return &m, &med, &q25, &q75
}

// quantile computes the q-th quantile of an ascending-sorted slice with
// linear interpolation.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
