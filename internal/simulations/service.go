package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/elasticom/elasticom-backend/internal/elasticity"
	"github.com/elasticom/elasticom-backend/internal/rfm"
	"github.com/elasticom/elasticom-backend/pkg/db/models"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/round"
)

// fallbackElasticity stands in for segments whose own fit is unavailable;
// unit elasticity is the neutral assumption.
const fallbackElasticity = -1.0

// Service runs price change simulations and manages saved ones.
type Service interface {
	SimulatePriceChange(ctx context.Context, req SimulateRequest) (*SimulateResult, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id uuid.UUID) (*Response, error)
	List(ctx context.Context, limit, offset int) (*ListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Metrics(ctx context.Context, id uuid.UUID, reference time.Time, start, end *time.Time) (*MetricsResponse, error)
}

type service struct {
	repo       *Repository
	elasticSvc elasticity.Service
	rfmSvc     rfm.Service
}

// NewService constructs the simulation service.
func NewService(repo *Repository, elasticSvc elasticity.Service, rfmSvc rfm.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("simulation repository required")
	}
	if elasticSvc == nil {
		return nil, fmt.Errorf("elasticity service required")
	}
	if rfmSvc == nil {
		return nil, fmt.Errorf("rfm service required")
	}
	return &service{repo: repo, elasticSvc: elasticSvc, rfmSvc: rfmSvc}, nil
}

// SimulatePriceChange projects demand and revenue after a price change on
// one product, applying %dQ = elasticity * %dP to the fitted elasticity.
func (s *service) SimulatePriceChange(ctx context.Context, req SimulateRequest) (*SimulateResult, error) {
	resp, err := s.elasticSvc.Calculate(ctx, elasticity.Filter{StockCodes: []string{req.StockCode}})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("product %q not found or insufficient data", req.StockCode))
	}
	product := resp.Results[0]

	currentPrice := product.AvgPrice
	currentQuantity := product.TotalQuantity
	currentRevenue := currentPrice * float64(currentQuantity)

	priceRatio := req.PriceChangePercent / 100
	quantityRatio := product.Elasticity * priceRatio

	projectedPrice := currentPrice * (1 + priceRatio)
	projectedQuantity := round.Quantity(float64(currentQuantity) * (1 + quantityRatio))
	if projectedQuantity < 0 {
		projectedQuantity = 0
	}
	projectedRevenue := projectedPrice * float64(projectedQuantity)

	revenueDelta := projectedRevenue - currentRevenue
	revenueChangePercent := 0.0
	if currentRevenue > 0 {
		revenueChangePercent = revenueDelta / currentRevenue * 100
	}

	return &SimulateResult{
		StockCode:             product.StockCode,
		Description:           product.Description,
		CurrentPrice:          round.Currency(currentPrice),
		CurrentQuantity:       currentQuantity,
		CurrentRevenue:        round.Currency(currentRevenue),
		PriceChangePercent:    req.PriceChangePercent,
		Elasticity:            product.Elasticity,
		RSquared:              product.RSquared,
		ProjectedPrice:        round.Currency(projectedPrice),
		ProjectedQuantity:     projectedQuantity,
		ProjectedRevenue:      round.Currency(projectedRevenue),
		QuantityChangePercent: round.Currency(quantityRatio * 100),
		RevenueChangePercent:  round.Currency(revenueChangePercent),
		RevenueDelta:          round.Currency(revenueDelta),
	}, nil
}

// Create stores a new saved simulation.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Response, error) {
	sim := &models.Simulation{
		ID:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		StockItemRef: req.StockItemRef,
		PriceRange:   pq.Int64Array(req.PriceRange),
	}
	if err := s.repo.Create(ctx, sim); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create simulation")
	}
	return toResponse(sim), nil
}

// Get returns a saved simulation by ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Response, error) {
	sim, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(sim), nil
}

// List returns saved simulations newest first.
func (s *service) List(ctx context.Context, limit, offset int) (*ListResponse, error) {
	sims, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list simulations")
	}
	items := make([]Response, 0, len(sims))
	for i := range sims {
		items = append(items, *toResponse(&sims[i]))
	}
	return &ListResponse{Total: total, Items: items}, nil
}

// Update applies a partial update to a saved simulation.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Response, error) {
	sim, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		sim.Name = *req.Name
	}
	if req.Description != nil {
		sim.Description = *req.Description
	}
	if req.PriceRange != nil {
		sim.PriceRange = pq.Int64Array(req.PriceRange)
	}
	if err := s.repo.Update(ctx, sim); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update simulation")
	}
	return toResponse(sim), nil
}

// Delete removes a saved simulation.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete simulation")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("simulation %q not found", id))
	}
	return nil
}

// Metrics projects the simulation's price change onto each business
// segment, using the midpoint of the saved percentage sweep.
func (s *service) Metrics(ctx context.Context, id uuid.UUID, reference time.Time, start, end *time.Time) (*MetricsResponse, error) {
	sim, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(sim.PriceRange) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "simulation price range is incomplete")
	}
	stockCode := sim.StockItemRef
	priceChangePercent := float64(sim.PriceRange[0]+sim.PriceRange[1]) / 2

	customers, err := s.rfmSvc.Compute(ctx, reference, start, end)
	if err != nil {
		return nil, err
	}
	customerSegments := make(map[string]string, len(customers))
	for _, c := range customers {
		customerSegments[c.CustomerID] = rfm.MapSegment(c.Segment)
	}

	rows, err := s.repo.CustomerPurchases(ctx, stockCode, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: customer purchases")
	}

	type bucket struct {
		quantity int64
		revenue  float64
	}
	segmentData := make(map[string]bucket)
	for _, row := range rows {
		segment, ok := customerSegments[row.CustomerID]
		if !ok {
			segment = rfm.SegmentLost
		}
		b := segmentData[segment]
		b.quantity += row.Quantity
		b.revenue += row.Revenue
		segmentData[segment] = b
	}

	elasticities := s.segmentElasticities(ctx, stockCode, reference, start, end)

	build := func(segment string) SegmentMetrics {
		data := segmentData[segment]
		eps, ok := elasticities[segment]
		if !ok {
			eps = fallbackElasticity
		}

		priceRatio := priceChangePercent / 100
		quantityRatio := eps * priceRatio

		projectedQuantity := round.Quantity(float64(data.quantity) * (1 + quantityRatio))
		if projectedQuantity < 0 {
			projectedQuantity = 0
		}
		projectedRevenue := data.revenue * (1 + priceRatio) * (1 + quantityRatio)

		deltaRevenuePercent := 0.0
		if data.revenue > 0 {
			deltaRevenuePercent = (projectedRevenue - data.revenue) / data.revenue * 100
		}

		return SegmentMetrics{
			PriceChangePercent:   round.Percent(priceChangePercent),
			Quantity:             projectedQuantity,
			Revenue:              round.Currency(projectedRevenue),
			DeltaQuantityPercent: round.Percent(quantityRatio * 100),
			DeltaRevenuePercent:  round.Percent(deltaRevenuePercent),
		}
	}

	return &MetricsResponse{
		Champions:          build(rfm.SegmentChampion),
		LoyalCustomers:     build(rfm.SegmentLoyalCustomers),
		PotentialLoyalists: build(rfm.SegmentPotentialLoyalists),
		AtRisk:             build(rfm.SegmentAtRisk),
		Hibernating:        build(rfm.SegmentHibernating),
		Lost:               build(rfm.SegmentLost),
	}, nil
}

// segmentElasticities fits the stock item's elasticity within each raw
// segment and maps it onto business segments. Segments that cannot be
// fitted are simply absent.
func (s *service) segmentElasticities(ctx context.Context, stockCode string, reference time.Time, start, end *time.Time) map[string]float64 {
	out := make(map[string]float64)
	bins := []string{"H", "M", "L"}
	for _, r := range bins {
		for _, f := range bins {
			for _, m := range bins {
				raw := rfm.BuildLabel(r, f, m)
				results, err := s.elasticSvc.BySegment(ctx, raw, reference, start, end)
				if err != nil {
					continue
				}
				for _, res := range results {
					if res.StockCode == stockCode {
						out[rfm.MapSegment(raw)] = res.Elasticity
						break
					}
				}
			}
		}
	}
	return out
}

func (s *service) fetch(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	sim, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get simulation")
	}
	if sim == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("simulation %q not found", id))
	}
	return sim, nil
}

func toResponse(sim *models.Simulation) *Response {
	return &Response{
		SimulationID: sim.ID,
		Name:         sim.Name,
		Description:  sim.Description,
		StockItemRef: sim.StockItemRef,
		PriceRange:   []int64(sim.PriceRange),
	}
}
