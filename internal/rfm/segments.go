package rfm

import "fmt"

// InsufficientData is the label assigned when fewer than three customers
// exist and tertiles would be meaningless.
const InsufficientData = "INSUFFICIENT_DATA"

// Business segment names, in presentation order.
const (
	SegmentChampion           = "Champion"
	SegmentLoyalCustomers     = "LoyalCustomers"
	SegmentPotentialLoyalists = "PotentialLoyalists"
	SegmentAtRisk             = "AtRisk"
	SegmentHibernating        = "Hibernating"
	SegmentLost               = "Lost"
)

// SegmentOrder fixes the output order of business segments across every
// dashboard payload.
var SegmentOrder = []string{
	SegmentChampion,
	SegmentLoyalCustomers,
	SegmentPotentialLoyalists,
	SegmentAtRisk,
	SegmentHibernating,
	SegmentLost,
}

// segmentMap assigns each of the 27 raw R/F/M bin combinations to a
// business segment.
var segmentMap = map[string]string{
	// Champions: recent, frequent, high value
	"RH_FH_MH": SegmentChampion, "RH_FH_MM": SegmentChampion, "RH_FM_MH": SegmentChampion,
	// Loyal customers: high frequency regardless of recency
	"RH_FH_ML": SegmentLoyalCustomers, "RM_FH_MH": SegmentLoyalCustomers,
	"RM_FH_MM": SegmentLoyalCustomers, "RL_FH_MH": SegmentLoyalCustomers,
	// Potential loyalists: recent but not yet frequent
	"RH_FM_MM": SegmentPotentialLoyalists, "RH_FM_ML": SegmentPotentialLoyalists,
	"RH_FL_MH": SegmentPotentialLoyalists, "RH_FL_MM": SegmentPotentialLoyalists,
	"RH_FL_ML": SegmentPotentialLoyalists,
	// At risk: were good customers, slipping away
	"RM_FH_ML": SegmentAtRisk, "RM_FM_MH": SegmentAtRisk,
	"RM_FM_MM": SegmentAtRisk, "RM_FM_ML": SegmentAtRisk,
	// Hibernating: low activity, may return
	"RM_FL_MH": SegmentHibernating, "RM_FL_MM": SegmentHibernating, "RM_FL_ML": SegmentHibernating,
	"RL_FH_MM": SegmentHibernating, "RL_FH_ML": SegmentHibernating,
	"RL_FM_MH": SegmentHibernating, "RL_FM_MM": SegmentHibernating,
	// Lost: likely churned
	"RL_FM_ML": SegmentLost, "RL_FL_MH": SegmentLost, "RL_FL_MM": SegmentLost, "RL_FL_ML": SegmentLost,
}

// MapSegment resolves a raw label like "RH_FH_MH" to its business segment.
// Unknown labels, including INSUFFICIENT_DATA, map to Lost.
func MapSegment(raw string) string {
	if segment, ok := segmentMap[raw]; ok {
		return segment
	}
	return SegmentLost
}

// BuildLabel combines per-dimension bins into a raw segment label.
func BuildLabel(r, f, m string) string {
	return fmt.Sprintf("R%s_F%s_M%s", r, f, m)
}

var scoreByBin = map[byte]float64{'H': 3, 'M': 2, 'L': 1}

// Score extracts the average R/F/M score on a 1-3 scale from a raw label,
// e.g. "RH_FM_ML" scores (3+2+1)/3 = 2. Returns false for malformed labels.
func Score(raw string) (float64, bool) {
	if len(raw) < 8 {
		return 0, false
	}
	r, okR := scoreByBin[raw[1]]
	f, okF := scoreByBin[raw[4]]
	m, okM := scoreByBin[raw[7]]
	if !okR || !okF || !okM {
		return 0, false
	}
	return (r + f + m) / 3, true
}
