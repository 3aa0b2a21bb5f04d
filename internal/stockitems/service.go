package stockitem

import (
	"context"
	"fmt"
	"time"

	"github.com/elasticom/elasticom-backend/internal/elasticity"
	"github.com/elasticom/elasticom-backend/internal/rfm"
	"github.com/elasticom/elasticom-backend/pkg/config"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/pagination"
	"github.com/elasticom/elasticom-backend/pkg/round"
)

// unknownSegment labels items bought only by unidentified customers.
const unknownSegment = "Unknown"

// Service serves the stock item grid and detail views.
type Service interface {
	Search(ctx context.Context, p SearchParams) (*GridResponse, error)
	Detail(ctx context.Context, stockCode string, start, end *time.Time) (*Detail, error)
}

type service struct {
	repo       *Repository
	elasticSvc elasticity.Service
	rfmSvc     rfm.Service
	cfg        config.ElasticityConfig
	now        func() time.Time
}

// NewService constructs the stock item service.
func NewService(repo *Repository, elasticSvc elasticity.Service, rfmSvc rfm.Service, cfg config.ElasticityConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock item repository required")
	}
	if elasticSvc == nil {
		return nil, fmt.Errorf("elasticity service required")
	}
	if rfmSvc == nil {
		return nil, fmt.Errorf("rfm service required")
	}
	return &service{
		repo:       repo,
		elasticSvc: elasticSvc,
		rfmSvc:     rfmSvc,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// Search returns one page of stock items with their elasticity, purchase
// frequency and dominant buyer segment.
func (s *service) Search(ctx context.Context, p SearchParams) (*GridResponse, error) {
	page := pagination.Normalize(p.Limit, p.Offset, pagination.DefaultLimit, s.cfg.MaxLimit)
	p.Limit = page.Limit
	p.Offset = page.Offset

	total, err := s.repo.CountMatching(ctx, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count stock items")
	}
	if total == 0 {
		return &GridResponse{Total: 0, Items: []GridItem{}}, nil
	}

	codes, err := s.repo.ListCodes(ctx, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock codes")
	}
	if len(codes) == 0 {
		return &GridResponse{Total: total, Items: []GridItem{}}, nil
	}

	elasticityMap, err := s.elasticityByCode(ctx, codes, p)
	if err != nil {
		return nil, err
	}
	frequencies, err := s.repo.PurchaseFrequencies(ctx, p, codes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: purchase frequencies")
	}
	freqMap := make(map[string]int64, len(frequencies))
	for _, row := range frequencies {
		freqMap[row.StockCode] = row.Frequency
	}

	segments, err := s.primarySegments(ctx, codes, p)
	if err != nil {
		return nil, err
	}

	descriptions, err := s.repo.Descriptions(ctx, codes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: descriptions")
	}
	descMap := make(map[string]string, len(descriptions))
	for _, row := range descriptions {
		descMap[row.StockCode] = row.Description
	}

	items := make([]GridItem, 0, len(codes))
	for _, code := range codes {
		var eps float64
		if res, ok := elasticityMap[code]; ok {
			eps = res.Elasticity
		}

		name := descMap[code]
		if name == "" {
			name = code
		}
		segment, ok := segments[code]
		if !ok {
			segment = unknownSegment
		}

		items = append(items, GridItem{
			ID:                code,
			ItemName:          name,
			Elasticity:        round.Metric(eps),
			PurchaseFrequency: freqMap[code],
			// negative elasticity means a price cut grows revenue
			RevenuePotential: round.Metric(-eps),
			Segment:          segment,
		})
	}

	return &GridResponse{Total: total, Items: items}, nil
}

// Detail returns the full elasticity view of one stock item, falling back
// to raw aggregates when no fit is possible.
func (s *service) Detail(ctx context.Context, stockCode string, start, end *time.Time) (*Detail, error) {
	resp, err := s.elasticSvc.Calculate(ctx, elasticity.Filter{
		StockCodes: []string{stockCode},
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Results) > 0 {
		res := resp.Results[0]
		name := res.Description
		if name == "" {
			name = stockCode
		}
		return &Detail{
			ID:            res.StockCode,
			ItemName:      name,
			Elasticity:    res.Elasticity,
			RSquared:      res.RSquared,
			AvgPrice:      res.AvgPrice,
			TotalQuantity: res.TotalQuantity,
			TotalRevenue:  round.Currency(res.AvgPrice * float64(res.TotalQuantity)),
			SampleSize:    res.SampleSize,
		}, nil
	}

	row, err := s.repo.Aggregates(ctx, stockCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: stock item aggregates")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("stock item %q not found", stockCode))
	}

	name := row.Description
	if name == "" {
		name = stockCode
	}
	return &Detail{
		ID:            stockCode,
		ItemName:      name,
		Elasticity:    0,
		RSquared:      0,
		AvgPrice:      round.Currency(row.AvgPrice),
		TotalQuantity: row.TotalQuantity,
		TotalRevenue:  round.Currency(row.Revenue),
		SampleSize:    0,
	}, nil
}

func (s *service) elasticityByCode(ctx context.Context, codes []string, p SearchParams) (map[string]elasticity.Result, error) {
	resp, err := s.elasticSvc.Calculate(ctx, elasticity.Filter{
		StockCodes: codes,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]elasticity.Result, len(resp.Results))
	for _, res := range resp.Results {
		out[res.StockCode] = res
	}
	return out, nil
}

// primarySegments resolves the most common buyer segment per stock item,
// weighted by purchase lines. Ties resolve in segment presentation order.
func (s *service) primarySegments(ctx context.Context, codes []string, p SearchParams) (map[string]string, error) {
	customers, err := s.rfmSvc.Compute(ctx, s.now().UTC(), p.StartDate, p.EndDate)
	if err != nil {
		return nil, err
	}
	customerSegments := make(map[string]string, len(customers))
	for _, c := range customers {
		customerSegments[c.CustomerID] = rfm.MapSegment(c.Segment)
	}

	buyers, err := s.repo.Buyers(ctx, p, codes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: buyers")
	}

	counts := make(map[string]map[string]int64)
	for _, row := range buyers {
		segment, ok := customerSegments[row.CustomerID]
		if !ok {
			segment = rfm.SegmentLost
		}
		byCode, ok := counts[row.StockCode]
		if !ok {
			byCode = make(map[string]int64)
			counts[row.StockCode] = byCode
		}
		byCode[segment] += row.Lines
	}

	out := make(map[string]string, len(counts))
	for code, bySegment := range counts {
		var best string
		var bestCount int64 = -1
		for _, segment := range rfm.SegmentOrder {
			if count, ok := bySegment[segment]; ok && count > bestCount {
				best = segment
				bestCount = count
			}
		}
		if best == "" {
			best = unknownSegment
		}
		out[code] = best
	}
	return out, nil
}
