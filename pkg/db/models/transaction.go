package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single invoice line from the retail dataset. CustomerID
// and Country are empty for guest purchases; cancelled invoices carry
// negative quantities and are filtered out by the analytics queries.
type Transaction struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNo   string          `gorm:"column:invoice_no;size:20;not null;index"`
	StockCode   string          `gorm:"column:stock_code;size:20;not null;index"`
	Description string          `gorm:"column:description;size:256"`
	Quantity    int             `gorm:"column:quantity;not null"`
	InvoiceDate time.Time       `gorm:"column:invoice_date;not null;index"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	CustomerID  string          `gorm:"column:customer_id;size:20;index"`
	Country     string          `gorm:"column:country;size:64;index"`
}

func (Transaction) TableName() string {
	return "transactions"
}
