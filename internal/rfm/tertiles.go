package rfm

import "sort"

// computeTertiles returns the 33rd and 66th percentile thresholds using
// linear interpolation. When duplicates collapse the thresholds, the range
// is split into three equal-width bins instead; identical values leave the
// thresholds equal so every customer bins to "M".
func computeTertiles(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n == 1 {
		return sorted[0], sorted[0]
	}

	q33 := interpolate(sorted, 0.33)
	q66 := interpolate(sorted, 0.66)

	if q33 == q66 {
		minVal, maxVal := sorted[0], sorted[n-1]
		if minVal == maxVal {
			return q33, q66
		}
		width := maxVal - minVal
		return minVal + width/3, minVal + 2*width/3
	}
	return q33, q66
}

func interpolate(sorted []float64, p float64) float64 {
	idx := float64(len(sorted)-1) * p
	lower := int(idx)
	upper := lower + 1
	if upper > len(sorted)-1 {
		upper = len(sorted) - 1
	}
	fraction := idx - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

// bin assigns L/M/H with higher values falling into higher bins. Equal
// thresholds mean every value is identical, so everyone lands in "M".
func bin(value, q33, q66 float64) string {
	switch {
	case q33 == q66:
		return "M"
	case value <= q33:
		return "L"
	case value <= q66:
		return "M"
	default:
		return "H"
	}
}

// binReverse assigns L/M/H with lower values falling into higher bins,
// used for recency where fewer days since purchase is better.
func binReverse(value, q33, q66 float64) string {
	switch {
	case q33 == q66:
		return "M"
	case value <= q33:
		return "H"
	case value <= q66:
		return "M"
	default:
		return "L"
	}
}
