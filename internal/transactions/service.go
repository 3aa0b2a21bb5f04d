package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/elasticom/elasticom-backend/pkg/config"
	"github.com/elasticom/elasticom-backend/pkg/db/models"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
)

// Service manages the transaction history feeding every analysis.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	CreateBatch(ctx context.Context, req BatchCreateRequest) (*BatchCreateResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*Response, error)
	List(ctx context.Context, p ListParams) (*ListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (*DeleteAllResponse, error)
}

type service struct {
	repo *Repository
	cfg  config.ImportConfig
}

// NewService constructs the transaction service.
func NewService(repo *Repository, cfg config.ImportConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

// Create stores a single transaction line.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Response, error) {
	tx := fromCreateRequest(req)
	if err := s.repo.Create(ctx, &tx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create transaction")
	}
	return toResponse(&tx), nil
}

// CreateBatch stores many transaction lines, chunked to keep statements
// bounded on large CSV uploads.
func (s *service) CreateBatch(ctx context.Context, req BatchCreateRequest) (*BatchCreateResponse, error) {
	txs := make([]models.Transaction, 0, len(req.Transactions))
	for _, item := range req.Transactions {
		txs = append(txs, fromCreateRequest(item))
	}
	if err := s.repo.CreateBatch(ctx, txs, s.cfg.BatchSize); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: batch create transactions")
	}
	return &BatchCreateResponse{
		Created: len(txs),
		Message: fmt.Sprintf("Successfully created %d transaction(s)", len(txs)),
	}, nil
}

// Get returns a transaction by ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Response, error) {
	tx, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(tx), nil
}

// List returns one page of transactions with optional filters.
func (s *service) List(ctx context.Context, p ListParams) (*ListResponse, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 1000 {
		p.PageSize = 1000
	}

	txs, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list transactions")
	}

	pages := int64(1)
	if total > 0 {
		pages = (total + int64(p.PageSize) - 1) / int64(p.PageSize)
	}

	items := make([]Response, 0, len(txs))
	for i := range txs {
		items = append(items, *toResponse(&txs[i]))
	}
	return &ListResponse{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Pages:    pages,
	}, nil
}

// Update applies a partial update to a transaction.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Response, error) {
	tx, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.InvoiceNo != nil {
		tx.InvoiceNo = *req.InvoiceNo
	}
	if req.StockCode != nil {
		tx.StockCode = *req.StockCode
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Quantity != nil {
		tx.Quantity = *req.Quantity
	}
	if req.InvoiceDate != nil {
		tx.InvoiceDate = *req.InvoiceDate
	}
	if req.UnitPrice != nil {
		tx.UnitPrice = *req.UnitPrice
	}
	if req.CustomerID != nil {
		tx.CustomerID = *req.CustomerID
	}
	if req.Country != nil {
		tx.Country = *req.Country
	}
	if err := s.repo.Update(ctx, tx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update transaction")
	}
	return toResponse(tx), nil
}

// Delete removes a transaction by ID.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete transaction")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("transaction %q not found", id))
	}
	return nil
}

// DeleteAll wipes the full transaction history.
func (s *service) DeleteAll(ctx context.Context) (*DeleteAllResponse, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete all transactions")
	}
	return &DeleteAllResponse{
		Deleted: deleted,
		Message: fmt.Sprintf("Successfully deleted %d transaction(s)", deleted),
	}, nil
}

func (s *service) fetch(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get transaction")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("transaction %q not found", id))
	}
	return tx, nil
}

func fromCreateRequest(req CreateRequest) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		InvoiceNo:   req.InvoiceNo,
		StockCode:   req.StockCode,
		Description: req.Description,
		Quantity:    req.Quantity,
		InvoiceDate: req.InvoiceDate,
		UnitPrice:   req.UnitPrice,
		CustomerID:  req.CustomerID,
		Country:     req.Country,
	}
}

func toResponse(tx *models.Transaction) *Response {
	return &Response{
		ID:          tx.ID,
		InvoiceNo:   tx.InvoiceNo,
		StockCode:   tx.StockCode,
		Description: tx.Description,
		Quantity:    tx.Quantity,
		InvoiceDate: tx.InvoiceDate,
		UnitPrice:   tx.UnitPrice,
		CustomerID:  tx.CustomerID,
		Country:     tx.Country,
	}
}
