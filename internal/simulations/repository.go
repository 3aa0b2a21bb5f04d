package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/pkg/db/models"
)

// CustomerPurchaseRow aggregates one customer's purchases of a stock item.
type CustomerPurchaseRow struct {
	CustomerID string
	Quantity   int64
	Revenue    float64
}

// Repository persists saved simulations and reads the per-customer
// purchase aggregates behind segment metrics.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new saved simulation.
func (r *Repository) Create(ctx context.Context, sim *models.Simulation) error {
	return r.db.WithContext(ctx).Create(sim).Error
}

// Get returns a simulation by ID, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Simulation, error) {
	var sim models.Simulation
	err := r.db.WithContext(ctx).First(&sim, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sim, nil
}

// List returns simulations newest first along with the total count.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Simulation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Simulation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sims []models.Simulation
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sims).Error
	if err != nil {
		return nil, 0, err
	}
	return sims, total, nil
}

// Update persists changes to a saved simulation.
func (r *Repository) Update(ctx context.Context, sim *models.Simulation) error {
	return r.db.WithContext(ctx).Save(sim).Error
}

// Delete removes a simulation, reporting whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Simulation{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CustomerPurchases returns quantity and revenue per customer for one stock
// item, skipping customers whose net quantity is not positive.
func (r *Repository) CustomerPurchases(ctx context.Context, stockCode string, start, end *time.Time) ([]CustomerPurchaseRow, error) {
	tx := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("stock_code = ?", stockCode).
		Where("customer_id IS NOT NULL AND customer_id <> ''")
	if start != nil {
		tx = tx.Where("invoice_date >= ?", *start)
	}
	if end != nil {
		tx = tx.Where("invoice_date <= ?", *end)
	}

	var rows []CustomerPurchaseRow
	err := tx.
		Select(
			"customer_id",
			"SUM(quantity) AS quantity",
			"SUM(quantity * unit_price) AS revenue",
		).
		Group("customer_id").
		Having("SUM(quantity) > 0").
		Scan(&rows).Error
	return rows, err
}
