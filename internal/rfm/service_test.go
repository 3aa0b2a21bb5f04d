package rfm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

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

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{DefaultTTL: time.Hour, RFMTTL: 24 * time.Hour}
}

func seedPurchase(t *testing.T, conn *gorm.DB, customerID, invoiceNo string, day time.Time, qty int, price float64) {
	t.Helper()
	tx := models.Transaction{
		ID:          uuid.New(),
		InvoiceNo:   invoiceNo,
		StockCode:   "85123A",
		Description: "WHITE HANGING HEART T-LIGHT HOLDER",
		Quantity:    qty,
		InvoiceDate: day,
		UnitPrice:   decimal.NewFromFloat(price),
		CustomerID:  customerID,
		Country:     "United Kingdom",
	}
	if err := conn.Create(&tx).Error; err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
}

func day(d int) time.Time {
	return time.Date(2011, 12, d, 10, 0, 0, 0, time.UTC)
}

func seedThreeCustomers(t *testing.T, conn *gorm.DB) {
	t.Helper()
	// C1: 3 invoices, last purchase Dec 9, revenue 1000
	seedPurchase(t, conn, "12680", "537001", day(7), 20, 10)
	seedPurchase(t, conn, "12680", "537002", day(8), 30, 10)
	seedPurchase(t, conn, "12680", "537003", day(9), 50, 10)
	// C2: 2 invoices, last purchase Dec 5, revenue 500
	seedPurchase(t, conn, "13047", "537004", day(4), 25, 10)
	seedPurchase(t, conn, "13047", "537005", day(5), 25, 10)
	// C3: 1 invoice, last purchase Nov 20, revenue 50
	seedPurchase(t, conn, "17850", "537006", time.Date(2011, 11, 20, 10, 0, 0, 0, time.UTC), 5, 10)
}

func newService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), pkgcache.New(), testCacheConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCompute_SegmentsThreeCustomers(t *testing.T) {
	conn := newTestDB(t)
	seedThreeCustomers(t, conn)
	// guest and return rows must not influence the metrics
	seedPurchase(t, conn, "", "537007", day(9), 100, 10)
	seedPurchase(t, conn, "12680", "C537008", day(9), -10, 10)

	reference := time.Date(2011, 12, 10, 0, 0, 0, 0, time.UTC)
	customers, err := newService(t, conn).Compute(context.Background(), reference, nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(customers) != 3 {
		t.Fatalf("expected 3 customers, got %d", len(customers))
	}

	byID := make(map[string]Customer, len(customers))
	for _, c := range customers {
		byID[c.CustomerID] = c
	}

	c1 := byID["12680"]
	if c1.Recency != 1 || c1.Frequency != 3 || c1.Monetary != 1000 {
		t.Fatalf("unexpected metrics for best customer: %+v", c1)
	}
	if c1.Segment != "RH_FH_MH" {
		t.Fatalf("expected RH_FH_MH for best customer, got %q", c1.Segment)
	}

	c2 := byID["13047"]
	if c2.Segment != "RM_FM_MM" {
		t.Fatalf("expected RM_FM_MM for middle customer, got %q", c2.Segment)
	}

	c3 := byID["17850"]
	if c3.Recency != 20 {
		t.Fatalf("expected recency 20 for lapsed customer, got %d", c3.Recency)
	}
	if c3.Segment != "RL_FL_ML" {
		t.Fatalf("expected RL_FL_ML for lapsed customer, got %q", c3.Segment)
	}
}

func TestCompute_InsufficientData(t *testing.T) {
	conn := newTestDB(t)
	seedPurchase(t, conn, "12680", "537001", day(7), 20, 10)
	seedPurchase(t, conn, "13047", "537002", day(8), 30, 10)

	customers, err := newService(t, conn).Compute(context.Background(), day(10), nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(customers))
	}
	for _, c := range customers {
		if c.Segment != InsufficientData {
			t.Fatalf("expected %s, got %q", InsufficientData, c.Segment)
		}
	}
}

func TestCompute_Empty(t *testing.T) {
	conn := newTestDB(t)
	customers, err := newService(t, conn).Compute(context.Background(), day(10), nil, nil)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(customers) != 0 {
		t.Fatalf("expected no customers, got %d", len(customers))
	}
}

func TestCompute_UsesCache(t *testing.T) {
	conn := newTestDB(t)
	seedThreeCustomers(t, conn)

	c := pkgcache.New()
	svc, err := NewService(NewRepository(conn), c, testCacheConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	reference := day(10)
	if _, err := svc.Compute(context.Background(), reference, nil, nil); err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	if err := conn.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
		t.Fatalf("delete transactions: %v", err)
	}
	customers, err := svc.Compute(context.Background(), reference, nil, nil)
	if err != nil {
		t.Fatalf("second Compute: %v", err)
	}
	if len(customers) != 3 {
		t.Fatal("expected second call to be served from cache")
	}
}

func TestCustomersInSegment(t *testing.T) {
	conn := newTestDB(t)
	seedThreeCustomers(t, conn)

	ids, err := newService(t, conn).CustomersInSegment(context.Background(), "RH_FH_MH", day(10), nil, nil)
	if err != nil {
		t.Fatalf("CustomersInSegment: %v", err)
	}
	if len(ids) != 1 || ids[0] != "12680" {
		t.Fatalf("unexpected segment members %v", ids)
	}
}
