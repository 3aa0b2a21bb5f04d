package elasticity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/pkg/db/models"
)

// SeriesRow is one product-day observation: the average unit price and the
// summed quantity across all invoice lines for that day.
type SeriesRow struct {
	StockCode     string
	Description   string
	AvgPrice      float64
	TotalQuantity int64
}

// Repository reads transaction aggregates for the regression.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) scoped(ctx context.Context, f Filter, includeStockCodes bool) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.StartDate != nil {
		tx = tx.Where("invoice_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		tx = tx.Where("invoice_date <= ?", *f.EndDate)
	}
	if f.Country != "" {
		tx = tx.Where("country = ?", f.Country)
	}
	if includeStockCodes && len(f.StockCodes) > 0 {
		tx = tx.Where("stock_code IN ?", f.StockCodes)
	}
	return tx
}

// CountProducts returns how many distinct stock codes match the filter.
func (r *Repository) CountProducts(ctx context.Context, f Filter) (int64, error) {
	var count int64
	err := r.scoped(ctx, f, true).
		Distinct("stock_code").
		Count(&count).Error
	return count, err
}

// ListStockCodes pages through distinct stock codes in lexical order.
func (r *Repository) ListStockCodes(ctx context.Context, f Filter, limit, offset int) ([]string, error) {
	var codes []string
	err := r.scoped(ctx, f, false).
		Select("stock_code").
		Group("stock_code").
		Order("stock_code").
		Offset(offset).
		Limit(limit).
		Pluck("stock_code", &codes).Error
	return codes, err
}

// DailySeries returns per-product daily observations for the target stock
// codes. Days with negative net quantity (returns) or a non-positive average
// price are excluded at the database level.
func (r *Repository) DailySeries(ctx context.Context, f Filter, stockCodes []string) ([]SeriesRow, error) {
	if len(stockCodes) == 0 {
		return nil, nil
	}
	var rows []SeriesRow
	err := r.scoped(ctx, f, false).
		Select(
			"stock_code",
			"MAX(description) AS description",
			"AVG(unit_price) AS avg_price",
			"SUM(quantity) AS total_quantity",
		).
		Where("stock_code IN ?", stockCodes).
		Group("stock_code").
		Group("DATE(invoice_date)").
		Having("SUM(quantity) > 0").
		Having("AVG(unit_price) > 0").
		Scan(&rows).Error
	return rows, err
}

// DailySeriesForCustomers is DailySeries scoped to purchases made by the
// given customers instead of a stock code list.
func (r *Repository) DailySeriesForCustomers(ctx context.Context, customerIDs []string, start, end *time.Time) ([]SeriesRow, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("customer_id IN ?", customerIDs)
	if start != nil {
		tx = tx.Where("invoice_date >= ?", *start)
	}
	if end != nil {
		tx = tx.Where("invoice_date <= ?", *end)
	}

	var rows []SeriesRow
	err := tx.
		Select(
			"stock_code",
			"MAX(description) AS description",
			"AVG(unit_price) AS avg_price",
			"SUM(quantity) AS total_quantity",
		).
		Group("stock_code").
		Group("DATE(invoice_date)").
		Having("SUM(quantity) > 0").
		Having("AVG(unit_price) > 0").
		Scan(&rows).Error
	return rows, err
}

// DateRange returns the earliest and latest invoice dates in the dataset,
// or nils when there are no transactions.
func (r *Repository) DateRange(ctx context.Context) (*time.Time, *time.Time, error) {
	first, err := r.edgeDate(ctx, "invoice_date ASC")
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, nil
	}
	last, err := r.edgeDate(ctx, "invoice_date DESC")
	if err != nil {
		return nil, nil, err
	}
	return first, last, nil
}

func (r *Repository) edgeDate(ctx context.Context, order string) (*time.Time, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Select("invoice_date").
		Order(order).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx.InvoiceDate, nil
}

// Countries lists the distinct non-empty countries in the dataset.
func (r *Repository) Countries(ctx context.Context) ([]string, error) {
	var countries []string
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("country IS NOT NULL AND country <> ''").
		Distinct("country").
		Order("country").
		Pluck("country", &countries).Error
	return countries, err
}
