package simulation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/elasticom/elasticom-backend/internal/elasticity"
	"github.com/elasticom/elasticom-backend/internal/rfm"
	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	"github.com/elasticom/elasticom-backend/pkg/config"
	"github.com/elasticom/elasticom-backend/pkg/db/models"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Transaction{}, &models.Simulation{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	cacheCfg := config.CacheConfig{DefaultTTL: time.Hour, RFMTTL: 24 * time.Hour}
	elasticCfg := config.ElasticityConfig{
		MinSampleSize: 3,
		IQRMultiplier: 1.5,
		DefaultLimit:  200,
		MaxLimit:      1000,
		CacheTTL:      time.Hour,
	}
	store := pkgcache.New()

	rfmSvc, err := rfm.NewService(rfm.NewRepository(conn), store, cacheCfg)
	if err != nil {
		t.Fatalf("rfm.NewService: %v", err)
	}
	elasticSvc, err := elasticity.NewService(elasticity.NewRepository(conn), store, elasticCfg, rfmSvc)
	if err != nil {
		t.Fatalf("elasticity.NewService: %v", err)
	}
	svc, err := NewService(NewRepository(conn), elasticSvc, rfmSvc)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedTransaction(t *testing.T, conn *gorm.DB, invoice, stockCode, customerID string, date time.Time, price float64, qty int) {
	t.Helper()
	tx := models.Transaction{
		ID:          uuid.New(),
		InvoiceNo:   invoice,
		StockCode:   stockCode,
		Description: "TEST ITEM " + stockCode,
		Quantity:    qty,
		InvoiceDate: date,
		UnitPrice:   decimal.NewFromFloat(price),
		CustomerID:  customerID,
		Country:     "United Kingdom",
	}
	if err := conn.Create(&tx).Error; err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}

func TestSimulatePriceChange(t *testing.T) {
	conn := newTestDB(t)
	// Q = 10^6 * P^-2 over three days: elasticity exactly -2.
	day := func(d int) time.Time { return time.Date(2011, 12, d, 10, 0, 0, 0, time.UTC) }
	seedTransaction(t, conn, "536301", "22423", "12680", day(1), 50, 400)
	seedTransaction(t, conn, "536302", "22423", "12680", day(2), 100, 100)
	seedTransaction(t, conn, "536303", "22423", "12680", day(3), 200, 25)
	svc := newTestService(t, conn)

	result, err := svc.SimulatePriceChange(context.Background(), SimulateRequest{
		StockCode:          "22423",
		PriceChangePercent: 10,
	})
	if err != nil {
		t.Fatalf("SimulatePriceChange: %v", err)
	}

	if result.Elasticity != -2.0 {
		t.Fatalf("elasticity = %v, want -2.0", result.Elasticity)
	}
	if result.CurrentPrice != 116.67 {
		t.Fatalf("current price = %v, want 116.67", result.CurrentPrice)
	}
	if result.CurrentQuantity != 525 {
		t.Fatalf("current quantity = %d, want 525", result.CurrentQuantity)
	}
	// -2 elasticity doubles the relative quantity drop: +10% price, -20% volume
	if result.QuantityChangePercent != -20.0 {
		t.Fatalf("quantity change = %v, want -20.0", result.QuantityChangePercent)
	}
	if result.ProjectedQuantity != 420 {
		t.Fatalf("projected quantity = %d, want 420", result.ProjectedQuantity)
	}
	if result.ProjectedPrice != 128.34 {
		t.Fatalf("projected price = %v, want 128.34", result.ProjectedPrice)
	}
	// revenue ratio is 1.1 * 0.8 = 0.88
	if result.RevenueChangePercent != -12.0 {
		t.Fatalf("revenue change = %v, want -12.0", result.RevenueChangePercent)
	}
}

func TestSimulatePriceChange_UnknownProduct(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.SimulatePriceChange(context.Background(), SimulateRequest{
		StockCode:          "DOESNOTEXIST",
		PriceChangePercent: 5,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSavedSimulationCRUD(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:         "Holiday pricing",
		Description:  "December sweep",
		StockItemRef: "85123A",
		PriceRange:   []int64{0, 20, 5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.SimulationID == uuid.Nil {
		t.Fatalf("expected assigned simulation ID")
	}

	got, err := svc.Get(ctx, created.SimulationID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Holiday pricing" || got.StockItemRef != "85123A" {
		t.Fatalf("unexpected simulation: %+v", got)
	}
	if len(got.PriceRange) != 3 || got.PriceRange[1] != 20 {
		t.Fatalf("price range = %v, want [0 20 5]", got.PriceRange)
	}

	list, err := svc.List(ctx, 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("list = %+v, want one item", list)
	}

	newName := "Holiday pricing v2"
	updated, err := svc.Update(ctx, created.SimulationID, UpdateRequest{
		Name:       &newName,
		PriceRange: []int64{-10, 10, 5},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != newName || updated.PriceRange[0] != -10 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	// untouched fields survive partial updates
	if updated.Description != "December sweep" {
		t.Fatalf("description = %q, want unchanged", updated.Description)
	}

	if err := svc.Delete(ctx, created.SimulationID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = svc.Get(ctx, created.SimulationID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestDelete_Missing(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	err := svc.Delete(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	conn := newTestDB(t)
	day := func(month time.Month, d int) time.Time {
		return time.Date(2011, month, d, 10, 0, 0, 0, time.UTC)
	}
	// Champion customer buys the simulated item on a unit-elastic curve.
	seedTransaction(t, conn, "536301", "85123A", "12680", day(time.December, 7), 1, 64)
	seedTransaction(t, conn, "536302", "85123A", "12680", day(time.December, 8), 2, 32)
	seedTransaction(t, conn, "536303", "85123A", "12680", day(time.December, 9), 4, 16)
	// Two more customers so segmentation has enough data; they buy another item.
	seedTransaction(t, conn, "536304", "84406B", "13047", day(time.December, 4), 5, 10)
	seedTransaction(t, conn, "536305", "84406B", "13047", day(time.December, 5), 5, 8)
	seedTransaction(t, conn, "536306", "84406B", "17850", day(time.November, 20), 5, 3)
	svc := newTestService(t, conn)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		Name:         "Champion sweep",
		StockItemRef: "85123A",
		PriceRange:   []int64{0, 20, 5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	reference := time.Date(2011, 12, 10, 0, 0, 0, 0, time.UTC)
	metrics, err := svc.Metrics(ctx, created.SimulationID, reference, nil, nil)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	// midpoint of [0, 20] is a +10% price change
	champions := metrics.Champions
	if champions.PriceChangePercent != 10.0 {
		t.Fatalf("price change = %v, want 10.0", champions.PriceChangePercent)
	}
	// unit elasticity fitted from the champion's own purchases: -10% volume
	if champions.DeltaQuantityPercent != -10.0 {
		t.Fatalf("delta quantity = %v, want -10.0", champions.DeltaQuantityPercent)
	}
	if champions.Quantity != 101 {
		t.Fatalf("projected quantity = %d, want 101", champions.Quantity)
	}
	if champions.Revenue != 190.08 {
		t.Fatalf("projected revenue = %v, want 190.08", champions.Revenue)
	}
	// revenue ratio is 1.1 * 0.9 = 0.99
	if champions.DeltaRevenuePercent != -1.0 {
		t.Fatalf("delta revenue = %v, want -1.0", champions.DeltaRevenuePercent)
	}

	// segments without purchases project from zero
	if metrics.Hibernating.Quantity != 0 || metrics.Hibernating.Revenue != 0 {
		t.Fatalf("hibernating = %+v, want zero quantities", metrics.Hibernating)
	}
}

func TestMetrics_MissingSimulation(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	_, err := svc.Metrics(context.Background(), uuid.New(), time.Now(), nil, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
