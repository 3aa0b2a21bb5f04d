package dashboard

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/pkg/db/models"
	dbtypes "github.com/elasticom/elasticom-backend/pkg/db/types"
)

// PurchasePair links a customer to a product they bought.
type PurchasePair struct {
	CustomerID string
	StockCode  string
}

// DailyRevenueRow is one customer's revenue on one sale date.
type DailyRevenueRow struct {
	SaleDate   dbtypes.FlexTime
	CustomerID string
	Revenue    float64
}

// Repository reads the transaction aggregates behind the dashboard panels.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CustomerProductPairs returns the distinct (customer, product) purchase
// pairs restricted to the given customers and stock codes.
func (r *Repository) CustomerProductPairs(ctx context.Context, customerIDs, stockCodes []string, start, end *time.Time) ([]PurchasePair, error) {
	if len(customerIDs) == 0 || len(stockCodes) == 0 {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("customer_id IN ?", customerIDs).
		Where("stock_code IN ?", stockCodes).
		Where("quantity > 0")
	if start != nil {
		tx = tx.Where("invoice_date >= ?", *start)
	}
	if end != nil {
		tx = tx.Where("invoice_date <= ?", *end)
	}

	var pairs []PurchasePair
	err := tx.
		Distinct("customer_id", "stock_code").
		Scan(&pairs).Error
	return pairs, err
}

// DailyCustomerRevenue returns per-customer revenue by sale date, skipping
// days where a customer's net revenue is not positive.
func (r *Repository) DailyCustomerRevenue(ctx context.Context, customerIDs []string, start, end *time.Time) ([]DailyRevenueRow, error) {
	if len(customerIDs) == 0 {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("customer_id IN ?", customerIDs).
		Where("quantity > 0")
	if start != nil {
		tx = tx.Where("invoice_date >= ?", *start)
	}
	if end != nil {
		tx = tx.Where("invoice_date <= ?", *end)
	}

	var rows []DailyRevenueRow
	err := tx.
		Select(
			"DATE(invoice_date) AS sale_date",
			"customer_id",
			"SUM(quantity * unit_price) AS revenue",
		).
		Group("DATE(invoice_date)").
		Group("customer_id").
		Having("SUM(quantity * unit_price) > 0").
		Order("DATE(invoice_date)").
		Scan(&rows).Error
	return rows, err
}
