package elasticity

import (
	"context"
	"fmt"
	"time"

	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	"github.com/elasticom/elasticom-backend/pkg/config"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/pagination"
	"github.com/elasticom/elasticom-backend/pkg/round"
)

// Service exposes the price elasticity estimates.
type Service interface {
	Calculate(ctx context.Context, f Filter) (*Response, error)
	BySegment(ctx context.Context, segment string, reference time.Time, start, end *time.Time) ([]Result, error)
}

// SegmentLookup resolves the customer IDs carrying a raw RFM label.
type SegmentLookup interface {
	CustomersInSegment(ctx context.Context, segment string, reference time.Time, start, end *time.Time) ([]string, error)
}

type service struct {
	repo     *Repository
	cache    *pkgcache.Cache
	cfg      config.ElasticityConfig
	segments SegmentLookup
}

// NewService constructs the elasticity service.
func NewService(repo *Repository, c *pkgcache.Cache, cfg config.ElasticityConfig, segments SegmentLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("elasticity repository required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	return &service{repo: repo, cache: c, cfg: cfg, segments: segments}, nil
}

// Calculate runs the log-log regression per product within the filter scope.
func (s *service) Calculate(ctx context.Context, f Filter) (*Response, error) {
	page := pagination.Normalize(f.Limit, f.Offset, s.cfg.DefaultLimit, s.cfg.MaxLimit)

	key := pkgcache.Key("elasticity",
		f.StockCodes, dateKey(f.StartDate), dateKey(f.EndDate), f.Country, page.Limit, page.Offset)

	return pkgcache.Do(s.cache, key, s.cfg.CacheTTL, func() (*Response, error) {
		return s.calculate(ctx, f, page)
	})
}

func (s *service) calculate(ctx context.Context, f Filter, page pagination.Params) (*Response, error) {
	total, err := s.repo.CountProducts(ctx, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	if total == 0 {
		return s.emptyResponse(ctx, f, page, 0)
	}

	var targetCodes []string
	effectiveLimit := page.Limit
	effectiveOffset := page.Offset
	if len(f.StockCodes) > 0 {
		targetCodes = f.StockCodes
		effectiveLimit = len(f.StockCodes)
		effectiveOffset = 0
	} else {
		targetCodes, err = s.repo.ListStockCodes(ctx, f, page.Limit, page.Offset)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock codes")
		}
	}
	if len(targetCodes) == 0 {
		return s.emptyResponse(ctx, f, pagination.Params{Limit: effectiveLimit, Offset: effectiveOffset}, total)
	}

	rows, err := s.repo.DailySeries(ctx, f, targetCodes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: daily series")
	}

	results := s.fitProducts(rows)

	meta, err := s.buildMeta(ctx, f, effectiveLimit, effectiveOffset, total, len(results))
	if err != nil {
		return nil, err
	}
	return &Response{Results: results, Meta: *meta}, nil
}

// fitProducts groups daily observations per product and fits each series.
// Products with too little data simply drop out of the result set.
func (s *service) fitProducts(rows []SeriesRow) []Result {
	type series struct {
		description string
		prices      []float64
		quantities  []float64
	}

	order := make([]string, 0)
	grouped := make(map[string]*series)
	for _, row := range rows {
		g, ok := grouped[row.StockCode]
		if !ok {
			g = &series{description: row.Description}
			grouped[row.StockCode] = g
			order = append(order, row.StockCode)
		}
		g.prices = append(g.prices, row.AvgPrice)
		g.quantities = append(g.quantities, float64(row.TotalQuantity))
	}

	results := make([]Result, 0, len(order))
	for _, code := range order {
		g := grouped[code]
		fit, ok := fitLogLog(g.prices, g.quantities, s.cfg.MinSampleSize, s.cfg.IQRMultiplier)
		if !ok {
			continue
		}
		results = append(results, Result{
			StockCode:     code,
			Description:   g.description,
			Elasticity:    round.Rate(fit.Elasticity),
			SampleSize:    fit.N,
			AvgPrice:      round.Currency(fit.AvgPrice),
			TotalQuantity: fit.TotalQuantity,
			RSquared:      round.Rate(fit.RSquared),
		})
	}
	return results
}

// BySegment fits elasticities over transactions from customers carrying the
// given raw RFM label.
func (s *service) BySegment(ctx context.Context, segment string, reference time.Time, start, end *time.Time) ([]Result, error) {
	if s.segments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "segment lookup not configured")
	}
	customerIDs, err := s.segments.CustomersInSegment(ctx, segment, reference, start, end)
	if err != nil {
		return nil, err
	}
	if len(customerIDs) == 0 {
		return []Result{}, nil
	}

	rows, err := s.repo.DailySeriesForCustomers(ctx, customerIDs, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: segment series")
	}
	return s.fitProducts(rows), nil
}

func (s *service) emptyResponse(ctx context.Context, f Filter, page pagination.Params, total int64) (*Response, error) {
	meta, err := s.buildMeta(ctx, f, page.Limit, page.Offset, total, 0)
	if err != nil {
		return nil, err
	}
	return &Response{Results: []Result{}, Meta: *meta}, nil
}

func (s *service) buildMeta(ctx context.Context, f Filter, limit, offset int, total int64, returned int) (*Meta, error) {
	start, end := f.StartDate, f.EndDate
	if start == nil || end == nil {
		minDate, maxDate, err := s.repo.DateRange(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: date range")
		}
		now := time.Now().UTC()
		if start == nil {
			if minDate != nil {
				start = minDate
			} else {
				start = &now
			}
		}
		if end == nil {
			if maxDate != nil {
				end = maxDate
			} else {
				end = &now
			}
		}
	}

	countries, err := s.repo.Countries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: countries")
	}

	return &Meta{
		StartDate:          start.Format("2006-01-02"),
		EndDate:            end.Format("2006-01-02"),
		TotalProducts:      total,
		ReturnedProducts:   returned,
		Limit:              limit,
		Offset:             offset,
		AvailableCountries: countries,
	}, nil
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format("2006-01-02")
}
