package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/elasticom/elasticom-backend/internal/elasticity"
	"github.com/elasticom/elasticom-backend/internal/rfm"
	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	"github.com/elasticom/elasticom-backend/pkg/config"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/round"
)

// sensitivityScale converts an absolute elasticity into a 0-100 score;
// |elasticity| of 3 saturates the scale.
const sensitivityScale = 33.33

// Service exposes the dashboard panels.
type Service interface {
	KPIMetrics(ctx context.Context, reference time.Time, start, end *time.Time) (*KPIResponse, error)
	SegmentTreeMap(ctx context.Context, reference time.Time, start, end *time.Time) (*TreeMapResponse, error)
	RevenueTrends(ctx context.Context, reference time.Time, start, end *time.Time) (*TrendsResponse, error)
}

type service struct {
	repo       *Repository
	rfmSvc     rfm.Service
	elasticSvc elasticity.Service
	cache      *pkgcache.Cache
	cacheCfg   config.CacheConfig
	elasticCfg config.ElasticityConfig
}

// NewService constructs the dashboard service.
func NewService(repo *Repository, rfmSvc rfm.Service, elasticSvc elasticity.Service, c *pkgcache.Cache, cacheCfg config.CacheConfig, elasticCfg config.ElasticityConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if rfmSvc == nil {
		return nil, fmt.Errorf("rfm service required")
	}
	if elasticSvc == nil {
		return nil, fmt.Errorf("elasticity service required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	return &service{
		repo:       repo,
		rfmSvc:     rfmSvc,
		elasticSvc: elasticSvc,
		cache:      c,
		cacheCfg:   cacheCfg,
		elasticCfg: elasticCfg,
	}, nil
}

// analysis returns the cached RFM snapshot shared by all panels, so the
// underlying segmentation runs once per cache period.
func (s *service) analysis(ctx context.Context, reference time.Time, start, end *time.Time) (*Analysis, error) {
	key := pkgcache.Key("rfm_analysis_data",
		reference.Format("2006-01-02"), dateKey(start), dateKey(end))

	return pkgcache.Do(s.cache, key, s.cacheCfg.DefaultTTL, func() (*Analysis, error) {
		customers, err := s.rfmSvc.Compute(ctx, reference, start, end)
		if err != nil {
			return nil, err
		}
		return newAnalysis(customers), nil
	})
}

// KPIMetrics computes price sensitivity, wallet share and churn risk per
// business segment.
func (s *service) KPIMetrics(ctx context.Context, reference time.Time, start, end *time.Time) (*KPIResponse, error) {
	key := pkgcache.Key("kpi_metrics",
		reference.Format("2006-01-02"), dateKey(start), dateKey(end))

	return pkgcache.Do(s.cache, key, s.cacheCfg.DefaultTTL, func() (*KPIResponse, error) {
		return s.kpiMetrics(ctx, reference, start, end)
	})
}

func (s *service) kpiMetrics(ctx context.Context, reference time.Time, start, end *time.Time) (*KPIResponse, error) {
	analysis, err := s.analysis(ctx, reference, start, end)
	if err != nil {
		return nil, err
	}
	if len(analysis.Customers) == 0 {
		return &KPIResponse{}, nil
	}

	elasticities, err := s.segmentElasticities(ctx, analysis, start, end)
	if err != nil {
		return nil, err
	}

	build := func(segment string) SegmentMetrics {
		customers := analysis.SegmentCustomers[segment]
		if len(customers) == 0 {
			return SegmentMetrics{}
		}

		var segmentRevenue, totalRecency float64
		for _, c := range customers {
			segmentRevenue += c.Monetary
			totalRecency += float64(c.Recency)
		}
		walletShare := segmentRevenue / analysis.TotalRevenue * 100
		avgRecency := totalRecency / float64(len(customers))
		churnRisk := avgRecency / float64(analysis.MaxRecency) * 100

		sensitivity := elasticities[segment] * sensitivityScale
		if sensitivity > 100 {
			sensitivity = 100
		}

		return SegmentMetrics{
			PriceSensitivity: round.Percent(sensitivity),
			WalletShare:      round.Percent(walletShare),
			ChurnRisk:        round.Percent(churnRisk),
		}
	}

	return &KPIResponse{
		Champion:           build(rfm.SegmentChampion),
		LoyalCustomers:     build(rfm.SegmentLoyalCustomers),
		PotentialLoyalists: build(rfm.SegmentPotentialLoyalists),
		AtRisk:             build(rfm.SegmentAtRisk),
		Hibernating:        build(rfm.SegmentHibernating),
		Lost:               build(rfm.SegmentLost),
	}, nil
}

// segmentElasticities averages the absolute elasticity of the products each
// segment's customers actually bought, joining the top products against the
// distinct purchase pairs in one pass.
func (s *service) segmentElasticities(ctx context.Context, analysis *Analysis, start, end *time.Time) (map[string]float64, error) {
	resp, err := s.elasticSvc.Calculate(ctx, elasticity.Filter{
		StartDate: start,
		EndDate:   end,
		Limit:     s.elasticCfg.DefaultLimit,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return map[string]float64{}, nil
	}

	productElasticity := make(map[string]float64, len(resp.Results))
	stockCodes := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		productElasticity[r.StockCode] = r.Elasticity
		stockCodes = append(stockCodes, r.StockCode)
	}

	pairs, err := s.repo.CustomerProductPairs(ctx, analysis.CustomerIDs, stockCodes, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: purchase pairs")
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, pair := range pairs {
		segment, ok := analysis.CustomerSegments[pair.CustomerID]
		if !ok {
			continue
		}
		eps, ok := productElasticity[pair.StockCode]
		if !ok {
			continue
		}
		if eps < 0 {
			eps = -eps
		}
		sums[segment] += eps
		counts[segment]++
	}

	averages := make(map[string]float64, len(sums))
	for segment, sum := range sums {
		averages[segment] = sum / float64(counts[segment])
	}
	return averages, nil
}

// SegmentTreeMap aggregates revenue, customer count and average RFM score
// per segment for the treemap panel.
func (s *service) SegmentTreeMap(ctx context.Context, reference time.Time, start, end *time.Time) (*TreeMapResponse, error) {
	key := pkgcache.Key("segment_treemap",
		reference.Format("2006-01-02"), dateKey(start), dateKey(end))

	return pkgcache.Do(s.cache, key, s.cacheCfg.DefaultTTL, func() (*TreeMapResponse, error) {
		return s.segmentTreeMap(ctx, reference, start, end)
	})
}

func (s *service) segmentTreeMap(ctx context.Context, reference time.Time, start, end *time.Time) (*TreeMapResponse, error) {
	analysis, err := s.analysis(ctx, reference, start, end)
	if err != nil {
		return nil, err
	}
	if len(analysis.Customers) == 0 {
		return &TreeMapResponse{Total: 0, Items: []TreeMapItem{}}, nil
	}

	type bucket struct {
		revenue float64
		count   int
		scores  []float64
	}
	buckets := make(map[string]*bucket)

	for _, c := range analysis.Customers {
		segment := rfm.MapSegment(c.Segment)
		b, ok := buckets[segment]
		if !ok {
			b = &bucket{}
			buckets[segment] = b
		}
		b.revenue += c.Monetary
		b.count++
		if score, ok := rfm.Score(c.Segment); ok {
			b.scores = append(b.scores, score)
		}
	}

	items := make([]TreeMapItem, 0, len(rfm.SegmentOrder))
	for _, segment := range rfm.SegmentOrder {
		b := buckets[segment]
		if b == nil || b.count == 0 {
			continue
		}

		avgScore := 1.0
		if len(b.scores) > 0 {
			var sum float64
			for _, score := range b.scores {
				sum += score
			}
			avgScore = sum / float64(len(b.scores))
		}
		// rescale the 1-3 average onto the 1-5 color scale
		score := round.Percent((avgScore-1)*2 + 1)
		if score < 1 {
			score = 1
		}
		if score > 5 {
			score = 5
		}

		items = append(items, TreeMapItem{
			Segment:       segment,
			Value:         round.Currency(b.revenue),
			Score:         score,
			CustomerCount: b.count,
		})
	}

	return &TreeMapResponse{Total: len(analysis.Customers), Items: items}, nil
}

// RevenueTrends produces the daily revenue-by-segment series for the area
// chart, ordered by date ascending.
func (s *service) RevenueTrends(ctx context.Context, reference time.Time, start, end *time.Time) (*TrendsResponse, error) {
	key := pkgcache.Key("revenue_trends",
		reference.Format("2006-01-02"), dateKey(start), dateKey(end))

	return pkgcache.Do(s.cache, key, s.cacheCfg.DefaultTTL, func() (*TrendsResponse, error) {
		return s.revenueTrends(ctx, reference, start, end)
	})
}

func (s *service) revenueTrends(ctx context.Context, reference time.Time, start, end *time.Time) (*TrendsResponse, error) {
	analysis, err := s.analysis(ctx, reference, start, end)
	if err != nil {
		return nil, err
	}
	if len(analysis.CustomerIDs) == 0 {
		return &TrendsResponse{Total: 0, Items: []TrendItem{}}, nil
	}

	rows, err := s.repo.DailyCustomerRevenue(ctx, analysis.CustomerIDs, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: daily revenue")
	}

	daily := make(map[time.Time]map[string]float64)
	for _, row := range rows {
		d := row.SaleDate.Time
		d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

		segments, ok := daily[d]
		if !ok {
			segments = make(map[string]float64, len(rfm.SegmentOrder))
			daily[d] = segments
		}

		segment, ok := analysis.CustomerSegments[row.CustomerID]
		if !ok {
			segment = rfm.SegmentLost
		}
		segments[segment] += row.Revenue
	}

	dates := make([]time.Time, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	items := make([]TrendItem, 0, len(dates))
	for _, d := range dates {
		segments := daily[d]
		items = append(items, TrendItem{
			Champion:           round.Currency(segments[rfm.SegmentChampion]),
			LoyalCustomers:     round.Currency(segments[rfm.SegmentLoyalCustomers]),
			PotentialLoyalists: round.Currency(segments[rfm.SegmentPotentialLoyalists]),
			AtRisk:             round.Currency(segments[rfm.SegmentAtRisk]),
			Hibernating:        round.Currency(segments[rfm.SegmentHibernating]),
			Lost:               round.Currency(segments[rfm.SegmentLost]),
			Date:               d.Format("02/01/2006"),
		})
	}

	return &TrendsResponse{Total: len(items), Items: items}, nil
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format("2006-01-02")
}
