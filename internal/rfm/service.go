package rfm

import (
	"context"
	"fmt"
	"time"

	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	"github.com/elasticom/elasticom-backend/pkg/config"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
)

// Customer carries the RFM metrics and raw segment label for one customer.
type Customer struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int64   `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	Segment    string  `json:"segment"`
}

// Service computes RFM segmentation over the transaction history.
type Service interface {
	Compute(ctx context.Context, reference time.Time, start, end *time.Time) ([]Customer, error)
	CustomersInSegment(ctx context.Context, segment string, reference time.Time, start, end *time.Time) ([]string, error)
}

type service struct {
	repo  *Repository
	cache *pkgcache.Cache
	cfg   config.CacheConfig
}

// NewService constructs the RFM service.
func NewService(repo *Repository, c *pkgcache.Cache, cfg config.CacheConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rfm repository required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	return &service{repo: repo, cache: c, cfg: cfg}, nil
}

// Compute aggregates recency, frequency and monetary value per customer and
// assigns tertile-based segment labels. Transaction history is static, so
// results are cached for a day.
func (s *service) Compute(ctx context.Context, reference time.Time, start, end *time.Time) ([]Customer, error) {
	key := pkgcache.Key("rfm_data",
		reference.Format("2006-01-02"), dateKey(start), dateKey(end))

	return pkgcache.Do(s.cache, key, s.cfg.RFMTTL, func() ([]Customer, error) {
		return s.compute(ctx, reference, start, end)
	})
}

func (s *service) compute(ctx context.Context, reference time.Time, start, end *time.Time) ([]Customer, error) {
	rows, err := s.repo.CustomerMetrics(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: customer metrics")
	}
	if len(rows) == 0 {
		return []Customer{}, nil
	}

	customers := make([]Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, Customer{
			CustomerID: row.CustomerID,
			Recency:    daysBetween(row.LastPurchase.Time, reference),
			Frequency:  row.InvoiceCount,
			Monetary:   row.Revenue,
		})
	}

	if len(customers) < 3 {
		for i := range customers {
			customers[i].Segment = InsufficientData
		}
		return customers, nil
	}

	assignSegments(customers)
	return customers, nil
}

// CustomersInSegment returns the IDs of customers carrying the given raw
// segment label.
func (s *service) CustomersInSegment(ctx context.Context, segment string, reference time.Time, start, end *time.Time) ([]string, error) {
	customers, err := s.Compute(ctx, reference, start, end)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for _, c := range customers {
		if c.Segment == segment {
			ids = append(ids, c.CustomerID)
		}
	}
	return ids, nil
}

// assignSegments computes tertile thresholds per dimension and labels each
// customer in place.
func assignSegments(customers []Customer) {
	recencies := make([]float64, len(customers))
	frequencies := make([]float64, len(customers))
	monetaries := make([]float64, len(customers))
	for i, c := range customers {
		recencies[i] = float64(c.Recency)
		frequencies[i] = float64(c.Frequency)
		monetaries[i] = c.Monetary
	}

	rQ33, rQ66 := computeTertiles(recencies)
	fQ33, fQ66 := computeTertiles(frequencies)
	mQ33, mQ66 := computeTertiles(monetaries)

	for i, c := range customers {
		rBin := binReverse(float64(c.Recency), rQ33, rQ66)
		fBin := bin(float64(c.Frequency), fQ33, fQ66)
		mBin := bin(c.Monetary, mQ33, mQ66)
		customers[i].Segment = BuildLabel(rBin, fBin, mBin)
	}
}

// daysBetween counts whole days from the last purchase date to the
// reference date, comparing at date granularity.
func daysBetween(last, reference time.Time) int {
	lastDate := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	refDate := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	return int(refDate.Sub(lastDate).Hours() / 24)
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format("2006-01-02")
}
