package dashboard

import "github.com/elasticom/elasticom-backend/internal/rfm"

// Analysis is the shared snapshot of RFM data every dashboard endpoint
// works from, precomputed once per cache period.
type Analysis struct {
	Customers        []rfm.Customer
	CustomerSegments map[string]string
	SegmentCustomers map[string][]rfm.Customer
	CustomerIDs      []string
	TotalRevenue     float64
	MaxRecency       int
}

// newAnalysis maps every customer's raw label to its business segment and
// derives the aggregates the KPI formulas divide by. TotalRevenue is floored
// at 1 and MaxRecency at 1 so they are safe denominators.
func newAnalysis(customers []rfm.Customer) *Analysis {
	a := &Analysis{
		Customers:        customers,
		CustomerSegments: make(map[string]string, len(customers)),
		SegmentCustomers: make(map[string][]rfm.Customer),
		CustomerIDs:      make([]string, 0, len(customers)),
		MaxRecency:       1,
	}

	for _, c := range customers {
		segment := rfm.MapSegment(c.Segment)
		a.CustomerIDs = append(a.CustomerIDs, c.CustomerID)
		a.CustomerSegments[c.CustomerID] = segment
		a.SegmentCustomers[segment] = append(a.SegmentCustomers[segment], c)
		a.TotalRevenue += c.Monetary
		if c.Recency > a.MaxRecency {
			a.MaxRecency = c.Recency
		}
	}

	if a.TotalRevenue < 1.0 {
		a.TotalRevenue = 1.0
	}
	return a
}
