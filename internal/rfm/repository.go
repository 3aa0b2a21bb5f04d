package rfm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/pkg/db/models"
	dbtypes "github.com/elasticom/elasticom-backend/pkg/db/types"
)

// MetricsRow is one customer's aggregated purchase history.
type MetricsRow struct {
	CustomerID   string
	LastPurchase dbtypes.FlexTime
	InvoiceCount int64
	Revenue      float64
}

// Repository aggregates per-customer purchase metrics.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CustomerMetrics returns last purchase date, distinct invoice count and
// total revenue per identified customer. Guest rows, returns and customers
// with non-positive revenue are excluded.
func (r *Repository) CustomerMetrics(ctx context.Context, start, end *time.Time) ([]MetricsRow, error) {
	tx := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("customer_id IS NOT NULL AND customer_id <> ''").
		Where("quantity > 0")
	if start != nil {
		tx = tx.Where("invoice_date >= ?", *start)
	}
	if end != nil {
		tx = tx.Where("invoice_date <= ?", *end)
	}

	var rows []MetricsRow
	err := tx.
		Select(
			"customer_id",
			"MAX(invoice_date) AS last_purchase",
			"COUNT(DISTINCT invoice_no) AS invoice_count",
			"SUM(quantity * unit_price) AS revenue",
		).
		Group("customer_id").
		Having("SUM(quantity * unit_price) > 0").
		Scan(&rows).Error
	return rows, err
}
