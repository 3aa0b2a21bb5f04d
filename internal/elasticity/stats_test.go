package elasticity

import (
	"math"
	"testing"
)

func TestFitLogLog_ExactPowerLaw(t *testing.T) {
	// Q = 100 * P^-1.5 is an exact fit, so R^2 must be 1.
	prices := []float64{1, 2, 4, 8}
	quantities := make([]float64, len(prices))
	for i, p := range prices {
		quantities[i] = 100 * math.Pow(p, -1.5)
	}

	fit, ok := fitLogLog(prices, quantities, 3, 1.5)
	if !ok {
		t.Fatal("expected a successful fit")
	}
	if math.Abs(fit.Elasticity-(-1.5)) > 1e-9 {
		t.Fatalf("expected elasticity -1.5, got %v", fit.Elasticity)
	}
	if math.Abs(fit.RSquared-1) > 1e-9 {
		t.Fatalf("expected R^2 of 1, got %v", fit.RSquared)
	}
	if fit.N != 4 {
		t.Fatalf("expected 4 observations, got %d", fit.N)
	}
}

func TestFitLogLog_InsufficientData(t *testing.T) {
	if _, ok := fitLogLog([]float64{1, 2}, []float64{10, 5}, 3, 1.5); ok {
		t.Fatal("expected fit to be rejected with fewer than 3 points")
	}

	// non-positive pairs are dropped before the sample check
	prices := []float64{1, 2, 0, -3}
	quantities := []float64{10, 5, 7, 4}
	if _, ok := fitLogLog(prices, quantities, 3, 1.5); ok {
		t.Fatal("expected fit to be rejected after dropping invalid pairs")
	}
}

func TestFitLogLog_ConstantPriceIsSingular(t *testing.T) {
	prices := []float64{5, 5, 5, 5}
	quantities := []float64{10, 12, 9, 11}
	if _, ok := fitLogLog(prices, quantities, 3, 1.5); ok {
		t.Fatal("expected singular system to be rejected")
	}
}

func TestRemoveOutliers_PairedExclusion(t *testing.T) {
	// The last x value is far outside its IQR band; the pair must go even
	// though its y value is unremarkable.
	x := []float64{1, 1.1, 0.9, 1.05, 0.95, 100}
	y := []float64{2, 2.1, 1.9, 2.05, 1.95, 2}

	keptX, keptY := removeOutliers(x, y, 1.5)
	if len(keptX) != 5 || len(keptY) != 5 {
		t.Fatalf("expected 5 surviving pairs, got %d/%d", len(keptX), len(keptY))
	}
	for _, v := range keptX {
		if v == 100 {
			t.Fatal("outlier pair should have been removed")
		}
	}
}

func TestQuartiles_LinearInterpolation(t *testing.T) {
	q1, q3 := quartiles([]float64{1, 2, 3, 4})
	if math.Abs(q1-1.75) > 1e-9 || math.Abs(q3-3.25) > 1e-9 {
		t.Fatalf("unexpected quartiles q1=%v q3=%v", q1, q3)
	}
}

func TestSummarize_RecoversFilteredStats(t *testing.T) {
	logP := []float64{math.Log(1), math.Log(2), math.Log(4)}
	logQ := []float64{math.Log(64), math.Log(32), math.Log(16)}

	avgPrice, totalQty := summarize(logP, logQ)
	if math.Abs(avgPrice-7.0/3.0) > 1e-9 {
		t.Fatalf("unexpected avg price %v", avgPrice)
	}
	if totalQty != 112 {
		t.Fatalf("unexpected total quantity %d", totalQty)
	}
}
