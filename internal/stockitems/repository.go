package stockitem

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/pkg/db/models"
)

// FrequencyRow counts distinct invoices for one stock item.
type FrequencyRow struct {
	StockCode string
	Frequency int64
}

// BuyerRow counts one customer's purchase lines for one stock item.
type BuyerRow struct {
	StockCode  string
	CustomerID string
	Lines      int64
}

// DescriptionRow carries the display name for one stock item.
type DescriptionRow struct {
	StockCode   string
	Description string
}

// AggregateRow is the raw fallback view of a stock item when no
// elasticity fit exists.
type AggregateRow struct {
	StockCode     string
	Description   string
	AvgPrice      float64
	TotalQuantity int64
	Revenue       float64
}

// Repository reads the transaction aggregates behind the stock item grid.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// scoped applies the shared search and date filters. The LOWER comparison
// keeps matching case-insensitive on every supported driver.
func (r *Repository) scoped(ctx context.Context, p SearchParams) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Transaction{})
	if p.StartDate != nil {
		tx = tx.Where("invoice_date >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		tx = tx.Where("invoice_date <= ?", *p.EndDate)
	}
	if p.Query != "" {
		pattern := "%" + p.Query + "%"
		tx = tx.Where("LOWER(stock_code) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}
	return tx
}

// CountMatching counts the distinct stock items matching the search.
func (r *Repository) CountMatching(ctx context.Context, p SearchParams) (int64, error) {
	var total int64
	err := r.scoped(ctx, p).
		Distinct("stock_code").
		Count(&total).Error
	return total, err
}

// ListCodes returns one page of matching stock codes in code order.
func (r *Repository) ListCodes(ctx context.Context, p SearchParams) ([]string, error) {
	var codes []string
	err := r.scoped(ctx, p).
		Group("stock_code").
		Order("stock_code").
		Offset(p.Offset).
		Limit(p.Limit).
		Pluck("stock_code", &codes).Error
	return codes, err
}

// PurchaseFrequencies counts distinct invoices per stock item.
func (r *Repository) PurchaseFrequencies(ctx context.Context, p SearchParams, codes []string) ([]FrequencyRow, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var rows []FrequencyRow
	err := r.scoped(ctx, p).
		Where("stock_code IN ?", codes).
		Select("stock_code", "COUNT(DISTINCT invoice_no) AS frequency").
		Group("stock_code").
		Scan(&rows).Error
	return rows, err
}

// Buyers returns purchase line counts per (stock item, customer) pair.
func (r *Repository) Buyers(ctx context.Context, p SearchParams, codes []string) ([]BuyerRow, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var rows []BuyerRow
	err := r.scoped(ctx, p).
		Where("stock_code IN ?", codes).
		Where("customer_id IS NOT NULL AND customer_id <> ''").
		Select("stock_code", "customer_id", "COUNT(*) AS lines").
		Group("stock_code").
		Group("customer_id").
		Scan(&rows).Error
	return rows, err
}

// Descriptions returns the display name per stock item, taking the
// lexicographically greatest description on record.
func (r *Repository) Descriptions(ctx context.Context, codes []string) ([]DescriptionRow, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var rows []DescriptionRow
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("stock_code IN ?", codes).
		Select("stock_code", "MAX(description) AS description").
		Group("stock_code").
		Scan(&rows).Error
	return rows, err
}

// Aggregates returns the raw totals for one stock item, or nil when no
// transactions reference it.
func (r *Repository) Aggregates(ctx context.Context, stockCode string) (*AggregateRow, error) {
	var row AggregateRow
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("stock_code = ?", stockCode).
		Select(
			"stock_code",
			"MAX(description) AS description",
			"AVG(unit_price) AS avg_price",
			"SUM(quantity) AS total_quantity",
			"SUM(quantity * unit_price) AS revenue",
		).
		Group("stock_code").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
