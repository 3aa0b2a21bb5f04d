package stockitem

import "time"

// SearchParams filters and paginates the stock item grid.
type SearchParams struct {
	Query     string
	Limit     int
	Offset    int
	StartDate *time.Time
	EndDate   *time.Time
}

// GridItem is one row of the stock item grid.
type GridItem struct {
	ID                string  `json:"id"`
	ItemName          string  `json:"itemName"`
	Elasticity        float64 `json:"elasticity"`
	PurchaseFrequency int64   `json:"purchaseFrequency"`
	RevenuePotential  float64 `json:"revenuePotential"`
	Segment           string  `json:"segment"`
}

// GridResponse is the paginated stock item grid.
type GridResponse struct {
	Total int64      `json:"total"`
	Items []GridItem `json:"items"`
}

// Detail is the full stock item view with elasticity data.
type Detail struct {
	ID            string  `json:"id"`
	ItemName      string  `json:"itemName"`
	Elasticity    float64 `json:"elasticity"`
	RSquared      float64 `json:"rSquared"`
	AvgPrice      float64 `json:"avgPrice"`
	TotalQuantity int64   `json:"totalQuantity"`
	TotalRevenue  float64 `json:"totalRevenue"`
	SampleSize    int     `json:"sampleSize"`
}
