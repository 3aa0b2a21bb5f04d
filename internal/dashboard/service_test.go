package dashboard

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
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Transaction{}); err != nil {
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
	svc, err := NewService(NewRepository(conn), rfmSvc, elasticSvc, store, cacheCfg, elasticCfg)
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

// seedThreeSegments produces three customers that land in Champion, AtRisk
// and Lost against a December 10 reference date:
//
//	12680: 3 invoices, last Dec 9, revenue 192 (unit-elastic product 85123A)
//	13047: 2 invoices, last Dec 5, revenue 90
//	17850: 1 invoice, Nov 20, revenue 15
func seedThreeSegments(t *testing.T, conn *gorm.DB) {
	t.Helper()
	day := func(month time.Month, d int) time.Time {
		return time.Date(2011, month, d, 10, 0, 0, 0, time.UTC)
	}
	seedTransaction(t, conn, "536301", "85123A", "12680", day(time.December, 7), 1, 64)
	seedTransaction(t, conn, "536302", "85123A", "12680", day(time.December, 8), 2, 32)
	seedTransaction(t, conn, "536303", "85123A", "12680", day(time.December, 9), 4, 16)

	seedTransaction(t, conn, "536304", "84406B", "13047", day(time.December, 4), 5, 10)
	seedTransaction(t, conn, "536305", "84406B", "13047", day(time.December, 5), 5, 8)

	seedTransaction(t, conn, "536306", "84406B", "17850", day(time.November, 20), 5, 3)
}

func referenceDate() time.Time {
	return time.Date(2011, 12, 10, 0, 0, 0, 0, time.UTC)
}

func TestKPIMetrics(t *testing.T) {
	conn := newTestDB(t)
	seedThreeSegments(t, conn)
	svc := newTestService(t, conn)

	resp, err := svc.KPIMetrics(context.Background(), referenceDate(), nil, nil)
	if err != nil {
		t.Fatalf("KPIMetrics: %v", err)
	}

	// Only the Champion bought the unit-elastic product, so only its
	// sensitivity is non-zero: |−1.0| * 33.33.
	champion := resp.Champion
	if champion.PriceSensitivity != 33.3 {
		t.Fatalf("champion sensitivity = %v, want 33.3", champion.PriceSensitivity)
	}
	if champion.WalletShare != 64.6 {
		t.Fatalf("champion wallet share = %v, want 64.6", champion.WalletShare)
	}
	if champion.ChurnRisk != 5.0 {
		t.Fatalf("champion churn risk = %v, want 5.0", champion.ChurnRisk)
	}

	atRisk := resp.AtRisk
	if atRisk.PriceSensitivity != 0 {
		t.Fatalf("at-risk sensitivity = %v, want 0", atRisk.PriceSensitivity)
	}
	if atRisk.WalletShare != 30.3 {
		t.Fatalf("at-risk wallet share = %v, want 30.3", atRisk.WalletShare)
	}
	if atRisk.ChurnRisk != 25.0 {
		t.Fatalf("at-risk churn risk = %v, want 25.0", atRisk.ChurnRisk)
	}

	lost := resp.Lost
	if lost.WalletShare != 5.1 {
		t.Fatalf("lost wallet share = %v, want 5.1", lost.WalletShare)
	}
	if lost.ChurnRisk != 100.0 {
		t.Fatalf("lost churn risk = %v, want 100.0", lost.ChurnRisk)
	}

	// segments with no customers stay zero-valued
	if resp.Hibernating != (SegmentMetrics{}) {
		t.Fatalf("hibernating = %+v, want zero", resp.Hibernating)
	}
}

func TestKPIMetrics_Empty(t *testing.T) {
	conn := newTestDB(t)
	svc := newTestService(t, conn)

	resp, err := svc.KPIMetrics(context.Background(), referenceDate(), nil, nil)
	if err != nil {
		t.Fatalf("KPIMetrics: %v", err)
	}
	if *resp != (KPIResponse{}) {
		t.Fatalf("expected zero response, got %+v", resp)
	}
}

func TestSegmentTreeMap(t *testing.T) {
	conn := newTestDB(t)
	seedThreeSegments(t, conn)
	svc := newTestService(t, conn)

	resp, err := svc.SegmentTreeMap(context.Background(), referenceDate(), nil, nil)
	if err != nil {
		t.Fatalf("SegmentTreeMap: %v", err)
	}

	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}
	want := []TreeMapItem{
		{Segment: rfm.SegmentChampion, Value: 192.0, Score: 5.0, CustomerCount: 1},
		{Segment: rfm.SegmentAtRisk, Value: 90.0, Score: 3.0, CustomerCount: 1},
		{Segment: rfm.SegmentLost, Value: 15.0, Score: 1.0, CustomerCount: 1},
	}
	if len(resp.Items) != len(want) {
		t.Fatalf("items = %d, want %d", len(resp.Items), len(want))
	}
	for i, w := range want {
		if resp.Items[i] != w {
			t.Fatalf("item %d = %+v, want %+v", i, resp.Items[i], w)
		}
	}
}

func TestRevenueTrends(t *testing.T) {
	conn := newTestDB(t)
	seedThreeSegments(t, conn)
	svc := newTestService(t, conn)

	resp, err := svc.RevenueTrends(context.Background(), referenceDate(), nil, nil)
	if err != nil {
		t.Fatalf("RevenueTrends: %v", err)
	}

	// six distinct sale dates, oldest first
	if resp.Total != 6 {
		t.Fatalf("total = %d, want 6", resp.Total)
	}
	first := resp.Items[0]
	if first.Date != "20/11/2011" {
		t.Fatalf("first date = %q, want 20/11/2011", first.Date)
	}
	if first.Lost != 15.0 {
		t.Fatalf("first Lost revenue = %v, want 15.0", first.Lost)
	}
	if first.Champion != 0 {
		t.Fatalf("first Champion revenue = %v, want 0", first.Champion)
	}

	last := resp.Items[5]
	if last.Date != "09/12/2011" {
		t.Fatalf("last date = %q, want 09/12/2011", last.Date)
	}
	if last.Champion != 64.0 {
		t.Fatalf("last Champion revenue = %v, want 64.0", last.Champion)
	}
}

func TestRevenueTrends_UsesCache(t *testing.T) {
	conn := newTestDB(t)
	seedThreeSegments(t, conn)
	svc := newTestService(t, conn)
	ctx := context.Background()

	first, err := svc.RevenueTrends(ctx, referenceDate(), nil, nil)
	if err != nil {
		t.Fatalf("RevenueTrends: %v", err)
	}
	if err := conn.Exec("DELETE FROM transactions").Error; err != nil {
		t.Fatalf("delete transactions: %v", err)
	}

	second, err := svc.RevenueTrends(ctx, referenceDate(), nil, nil)
	if err != nil {
		t.Fatalf("RevenueTrends (cached): %v", err)
	}
	if second.Total != first.Total {
		t.Fatalf("cached total = %d, want %d", second.Total, first.Total)
	}
}
