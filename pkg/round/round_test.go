package round

import "testing"

func TestRate(t *testing.T) {
	if got := Rate(-1.23456789); got != -1.2346 {
		t.Fatalf("Rate(-1.23456789) = %v", got)
	}
	if got := Rate(0.999950001); got != 1.0 {
		t.Fatalf("Rate(0.999950001) = %v", got)
	}
}

func TestCurrency(t *testing.T) {
	if got := Currency(88000.005); got != 88000.01 {
		t.Fatalf("Currency(88000.005) = %v", got)
	}
	if got := Currency(2.554); got != 2.55 {
		t.Fatalf("Currency(2.554) = %v", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(-12.04); got != -12.0 {
		t.Fatalf("Percent(-12.04) = %v", got)
	}
	if got := Percent(49.95); got != 50.0 {
		t.Fatalf("Percent(49.95) = %v", got)
	}
}

func TestQuantity(t *testing.T) {
	if got := Quantity(799.5); got != 800 {
		t.Fatalf("Quantity(799.5) = %v", got)
	}
	if got := Quantity(799.4); got != 799 {
		t.Fatalf("Quantity(799.4) = %v", got)
	}
}
