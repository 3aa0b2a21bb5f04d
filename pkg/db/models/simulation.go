package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Simulation is a saved price-change scenario for a single stock item.
// PriceRange is stored as [from, to, step] percentage points.
type Simulation struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string        `gorm:"column:name;size:256;not null"`
	Description  string        `gorm:"column:description;type:text"`
	StockItemRef string        `gorm:"column:stock_item_ref;size:20;not null;index"`
	PriceRange   pq.Int64Array `gorm:"column:price_range;type:integer[];not null"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Simulation) TableName() string {
	return "simulations"
}
