package dashboard

// SegmentMetrics is the KPI triple for one business segment.
type SegmentMetrics struct {
	PriceSensitivity float64 `json:"priceSensitivity"`
	WalletShare      float64 `json:"walletShare"`
	ChurnRisk        float64 `json:"churnRisk"`
}

// KPIResponse carries the KPI metrics for every business segment.
type KPIResponse struct {
	Champion           SegmentMetrics `json:"Champion"`
	LoyalCustomers     SegmentMetrics `json:"LoyalCustomers"`
	PotentialLoyalists SegmentMetrics `json:"PotentialLoyalists"`
	AtRisk             SegmentMetrics `json:"AtRisk"`
	Hibernating        SegmentMetrics `json:"Hibernating"`
	Lost               SegmentMetrics `json:"Lost"`
}

// TreeMapItem sizes one segment for the treemap visualization.
type TreeMapItem struct {
	Segment       string  `json:"segment"`
	Value         float64 `json:"value"`
	Score         float64 `json:"score"`
	CustomerCount int     `json:"customerCount"`
}

// TreeMapResponse is the segment treemap payload.
type TreeMapResponse struct {
	Total int           `json:"total"`
	Items []TreeMapItem `json:"items"`
}

// TrendItem is one day's revenue broken down by segment.
type TrendItem struct {
	Champion           float64 `json:"Champion"`
	LoyalCustomers     float64 `json:"LoyalCustomers"`
	PotentialLoyalists float64 `json:"PotentialLoyalists"`
	AtRisk             float64 `json:"AtRisk"`
	Hibernating        float64 `json:"Hibernating"`
	Lost               float64 `json:"Lost"`
	Date               string  `json:"date"`
}

// TrendsResponse is the revenue area chart payload.
type TrendsResponse struct {
	Total int         `json:"total"`
	Items []TrendItem `json:"items"`
}
