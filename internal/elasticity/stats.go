package elasticity

import (
	"math"
	"sort"
)

// regression holds the OLS fit of ln(Q) = alpha + epsilon*ln(P) along with
// summary stats of the observations that survived outlier removal.
type regression struct {
	Elasticity    float64
	RSquared      float64
	N             int
	AvgPrice      float64
	TotalQuantity int64
}

// fitLogLog runs the log-log regression over paired price/quantity series.
// Pairs with non-positive values are dropped, then outliers are removed on
// the log scale. Returns false when fewer than minSamples points survive or
// the system is singular.
func fitLogLog(prices []float64, quantities []float64, minSamples int, iqrK float64) (regression, bool) {
	if len(prices) != len(quantities) || len(prices) < minSamples {
		return regression{}, false
	}

	logP := make([]float64, 0, len(prices))
	logQ := make([]float64, 0, len(quantities))
	for i := range prices {
		if prices[i] <= 0 || quantities[i] <= 0 {
			continue
		}
		logP = append(logP, math.Log(prices[i]))
		logQ = append(logQ, math.Log(quantities[i]))
	}
	if len(logP) < minSamples {
		return regression{}, false
	}

	logP, logQ = removeOutliers(logP, logQ, iqrK)
	if len(logP) < minSamples {
		return regression{}, false
	}

	n := len(logP)
	meanP := mean(logP)
	meanQ := mean(logQ)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := logP[i] - meanP
		sxx += dx * dx
		sxy += dx * (logQ[i] - meanQ)
	}
	if sxx == 0 {
		// every observation has the same price; slope is undefined
		return regression{}, false
	}

	slope := sxy / sxx
	intercept := meanQ - slope*meanP

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		pred := intercept + slope*logP[i]
		ssRes += (logQ[i] - pred) * (logQ[i] - pred)
		ssTot += (logQ[i] - meanQ) * (logQ[i] - meanQ)
	}

	rSquared := 0.0
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}
	if rSquared < 0 {
		rSquared = 0
	}

	avgPrice, totalQty := summarize(logP, logQ)

	return regression{
		Elasticity:    slope,
		RSquared:      rSquared,
		N:             n,
		AvgPrice:      avgPrice,
		TotalQuantity: totalQty,
	}, true
}

// removeOutliers drops pairs where either coordinate falls outside the
// [Q1 - k*IQR, Q3 + k*IQR] band of its own series.
func removeOutliers(x, y []float64, k float64) ([]float64, []float64) {
	q1x, q3x := quartiles(x)
	q1y, q3y := quartiles(y)

	iqrX := q3x - q1x
	iqrY := q3y - q1y

	lowerX, upperX := q1x-k*iqrX, q3x+k*iqrX
	lowerY, upperY := q1y-k*iqrY, q3y+k*iqrY

	keptX := make([]float64, 0, len(x))
	keptY := make([]float64, 0, len(y))
	for i := range x {
		if x[i] >= lowerX && x[i] <= upperX && y[i] >= lowerY && y[i] <= upperY {
			keptX = append(keptX, x[i])
			keptY = append(keptY, y[i])
		}
	}
	return keptX, keptY
}

// quartiles returns the 25th and 75th percentiles using linear interpolation.
func quartiles(values []float64) (float64, float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentile(sorted, 0.25), percentile(sorted, 0.75)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := float64(len(sorted)-1) * p
	lower := int(idx)
	upper := lower + 1
	if upper > len(sorted)-1 {
		upper = len(sorted) - 1
	}
	fraction := idx - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// summarize recovers price/quantity summary stats from the filtered series.
// The values are exponentiated back from the log scale so the stats reflect
// only the observations that survived outlier removal.
func summarize(logP, logQ []float64) (avgPrice float64, totalQty int64) {
	var sumP, sumQ float64
	for i := range logP {
		sumP += math.Exp(logP[i])
		sumQ += math.Exp(logQ[i])
	}
	if len(logP) > 0 {
		avgPrice = sumP / float64(len(logP))
	}
	return avgPrice, int64(math.Round(sumQ))
}
