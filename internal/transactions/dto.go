package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest creates a single transaction line.
type CreateRequest struct {
	InvoiceNo   string          `json:"invoice_no" validate:"required,max=20"`
	StockCode   string          `json:"stock_code" validate:"required,max=20"`
	Description string          `json:"description" validate:"max=256"`
	Quantity    int             `json:"quantity" validate:"required"`
	InvoiceDate time.Time       `json:"invoice_date" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CustomerID  string          `json:"customer_id" validate:"max=20"`
	Country     string          `json:"country" validate:"max=64"`
}

// UpdateRequest partially updates a transaction.
type UpdateRequest struct {
	InvoiceNo   *string          `json:"invoice_no" validate:"omitempty,max=20"`
	StockCode   *string          `json:"stock_code" validate:"omitempty,max=20"`
	Description *string          `json:"description" validate:"omitempty,max=256"`
	Quantity    *int             `json:"quantity"`
	InvoiceDate *time.Time       `json:"invoice_date"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	CustomerID  *string          `json:"customer_id" validate:"omitempty,max=20"`
	Country     *string          `json:"country" validate:"omitempty,max=64"`
}

// BatchCreateRequest creates many transactions in one call, the bulk
// upload path for CSV data.
type BatchCreateRequest struct {
	Transactions []CreateRequest `json:"transactions" validate:"required,min=1,dive"`
}

// BatchCreateResponse reports the outcome of a bulk upload.
type BatchCreateResponse struct {
	Created int    `json:"created"`
	Message string `json:"message"`
}

// Response is one transaction line.
type Response struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceNo   string          `json:"invoice_no"`
	StockCode   string          `json:"stock_code"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	InvoiceDate time.Time       `json:"invoice_date"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CustomerID  string          `json:"customer_id"`
	Country     string          `json:"country"`
}

// ListParams filters and paginates the transaction list.
type ListParams struct {
	Page      int
	PageSize  int
	StockCode string
	Country   string
}

// ListResponse is a page of transactions.
type ListResponse struct {
	Items    []Response `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Pages    int64      `json:"pages"`
}

// DeleteAllResponse reports a bulk wipe.
type DeleteAllResponse struct {
	Deleted int64  `json:"deleted"`
	Message string `json:"message"`
}
