package transaction

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/pkg/db/models"
)

// Repository persists transaction lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts one transaction.
func (r *Repository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// CreateBatch inserts transactions in chunks of batchSize.
func (r *Repository) CreateBatch(ctx context.Context, txs []models.Transaction, batchSize int) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(txs, batchSize).Error
}

// Get returns a transaction by ID, or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List returns one page of transactions, newest invoice date first, along
// with the count of all rows matching the filters.
func (r *Repository) List(ctx context.Context, p ListParams) ([]models.Transaction, int64, error) {
	scoped := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Transaction{})
		if p.StockCode != "" {
			tx = tx.Where("stock_code = ?", p.StockCode)
		}
		if p.Country != "" {
			tx = tx.Where("country = ?", p.Country)
		}
		return tx
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := scoped().
		Order("invoice_date DESC").
		Offset((p.Page - 1) * p.PageSize).
		Limit(p.PageSize).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// Update persists changes to a transaction.
func (r *Repository) Update(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// Delete removes a transaction, reporting whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll wipes every transaction and returns the number of rows removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}
