package simulation

import "github.com/google/uuid"

// SimulateRequest asks for a quick what-if on a single product.
type SimulateRequest struct {
	StockCode          string  `json:"stock_code" validate:"required"`
	PriceChangePercent float64 `json:"price_change_percent" validate:"gte=-99,lte=1000"`
}

// SimulateResult projects the demand and revenue impact of a price change.
type SimulateResult struct {
	StockCode   string `json:"stock_code"`
	Description string `json:"description"`

	CurrentPrice    float64 `json:"current_price"`
	CurrentQuantity int64   `json:"current_quantity"`
	CurrentRevenue  float64 `json:"current_revenue"`

	PriceChangePercent float64 `json:"price_change_percent"`
	Elasticity         float64 `json:"elasticity"`
	RSquared           float64 `json:"r_squared"`

	ProjectedPrice    float64 `json:"projected_price"`
	ProjectedQuantity int64   `json:"projected_quantity"`
	ProjectedRevenue  float64 `json:"projected_revenue"`

	QuantityChangePercent float64 `json:"quantity_change_percent"`
	RevenueChangePercent  float64 `json:"revenue_change_percent"`
	RevenueDelta          float64 `json:"revenue_delta"`
}

// CreateRequest creates a saved simulation. PriceRange is the percentage
// sweep [from, to, step].
type CreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=256"`
	Description  string  `json:"description"`
	StockItemRef string  `json:"stockItemRef" validate:"required"`
	PriceRange   []int64 `json:"priceRange" validate:"required,len=3"`
}

// UpdateRequest partially updates a saved simulation.
type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=256"`
	Description *string `json:"description"`
	PriceRange  []int64 `json:"priceRange" validate:"omitempty,len=3"`
}

// Response is a saved simulation.
type Response struct {
	SimulationID uuid.UUID `json:"simulationId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	StockItemRef string    `json:"stockItemRef"`
	PriceRange   []int64   `json:"priceRange"`
}

// ListResponse is a paginated list of saved simulations.
type ListResponse struct {
	Total int64      `json:"total"`
	Items []Response `json:"items"`
}

// SegmentMetrics projects the price change impact on one business segment.
type SegmentMetrics struct {
	PriceChangePercent   float64 `json:"priceChangePercent"`
	Quantity             int64   `json:"quantity"`
	Revenue              float64 `json:"revenue"`
	DeltaQuantityPercent float64 `json:"deltaQuantityPercent"`
	DeltaRevenuePercent  float64 `json:"deltaRevenuePercent"`
}

// MetricsResponse carries per-segment projections for a saved simulation.
type MetricsResponse struct {
	Champions          SegmentMetrics `json:"Champions"`
	LoyalCustomers     SegmentMetrics `json:"LoyalCustomers"`
	PotentialLoyalists SegmentMetrics `json:"PotentialLoyalists"`
	AtRisk             SegmentMetrics `json:"AtRisk"`
	Hibernating        SegmentMetrics `json:"Hibernating"`
	Lost               SegmentMetrics `json:"Lost"`
}
