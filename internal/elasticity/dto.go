package elasticity

import "time"

// Filter narrows which transactions feed the regression.
type Filter struct {
	StockCodes []string
	StartDate  *time.Time
	EndDate    *time.Time
	Country    string
	Limit      int
	Offset     int
}

// Result is the per-product elasticity estimate.
type Result struct {
	StockCode     string  `json:"stock_code"`
	Description   string  `json:"description"`
	Elasticity    float64 `json:"elasticity"`
	SampleSize    int     `json:"sample_size"`
	AvgPrice      float64 `json:"avg_price"`
	TotalQuantity int64   `json:"total_quantity"`
	RSquared      float64 `json:"r_squared"`
}

// Meta describes the scope of an elasticity response.
type Meta struct {
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	TotalProducts      int64    `json:"total_products"`
	ReturnedProducts   int      `json:"returned_products"`
	Limit              int      `json:"limit"`
	Offset             int      `json:"offset"`
	AvailableCountries []string `json:"available_countries"`
}

// Response bundles results with scope metadata.
type Response struct {
	Results []Result `json:"results"`
	Meta    Meta     `json:"meta"`
}
