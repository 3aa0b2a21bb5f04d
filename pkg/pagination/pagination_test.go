package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name                     string
		limit, offset, def, max  int
		wantLimit, wantOffset    int
	}{
		{"defaults when unset", 0, 0, 200, 1000, 200, 0},
		{"caps at max", 5000, 0, 200, 1000, 1000, 0},
		{"negative offset clamped", 50, -10, 200, 1000, 50, 0},
		{"package fallbacks", 0, 0, 0, 0, DefaultLimit, 0},
		{"passes through valid", 100, 40, 200, 1000, 100, 40},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.limit, tc.offset, tc.def, tc.max)
			if got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
				t.Fatalf("Normalize(%d,%d,%d,%d) = %+v", tc.limit, tc.offset, tc.def, tc.max, got)
			}
		})
	}
}
