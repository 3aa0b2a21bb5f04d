package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elasticom/elasticom-backend/api/routes"
	dashboardsvc "github.com/elasticom/elasticom-backend/internal/dashboard"
	elasticsvc "github.com/elasticom/elasticom-backend/internal/elasticity"
	"github.com/elasticom/elasticom-backend/internal/rfm"
	simulationsvc "github.com/elasticom/elasticom-backend/internal/simulations"
	stockitemsvc "github.com/elasticom/elasticom-backend/internal/stockitems"
	transactionsvc "github.com/elasticom/elasticom-backend/internal/transactions"
	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	"github.com/elasticom/elasticom-backend/pkg/config"
	"github.com/elasticom/elasticom-backend/pkg/db"
	"github.com/elasticom/elasticom-backend/pkg/logger"
	"github.com/elasticom/elasticom-backend/pkg/metrics"
	"github.com/elasticom/elasticom-backend/pkg/redis"
)

type dbPinger struct {
	client *db.Client
}

func (p dbPinger) Ping() error {
	return p.client.Ping(context.Background())
}

// NewHandler wires the analysis services and returns the HTTP handler that
// cmd/api mounts into its server. redisClient may be nil, which disables
// the import rate limiter.
func NewHandler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (http.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	cacheMetrics := metrics.NewCacheMetrics(registry)
	analysisCache := pkgcache.New(pkgcache.WithObserver(cacheMetrics))

	conn := dbClient.DB()

	rfmService, err := rfm.NewService(rfm.NewRepository(conn), analysisCache, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("building rfm service: %w", err)
	}
	elasticityService, err := elasticsvc.NewService(elasticsvc.NewRepository(conn), analysisCache, cfg.Elasticity, rfmService)
	if err != nil {
		return nil, fmt.Errorf("building elasticity service: %w", err)
	}
	dashboardService, err := dashboardsvc.NewService(dashboardsvc.NewRepository(conn), rfmService, elasticityService, analysisCache, cfg.Cache, cfg.Elasticity)
	if err != nil {
		return nil, fmt.Errorf("building dashboard service: %w", err)
	}
	simulationService, err := simulationsvc.NewService(simulationsvc.NewRepository(conn), elasticityService, rfmService)
	if err != nil {
		return nil, fmt.Errorf("building simulation service: %w", err)
	}
	stockItemService, err := stockitemsvc.NewService(stockitemsvc.NewRepository(conn), elasticityService, rfmService, cfg.Elasticity)
	if err != nil {
		return nil, fmt.Errorf("building stock item service: %w", err)
	}
	transactionService, err := transactionsvc.NewService(transactionsvc.NewRepository(conn), cfg.Import)
	if err != nil {
		return nil, fmt.Errorf("building transaction service: %w", err)
	}

	return routes.NewRouter(
		cfg,
		logg,
		dbPinger{client: dbClient},
		redisClient,
		analysisCache,
		httpMetrics,
		registry,
		elasticityService,
		dashboardService,
		simulationService,
		stockItemService,
		transactionService,
	), nil
}
