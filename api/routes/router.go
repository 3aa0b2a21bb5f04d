package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elasticom/elasticom-backend/api/controllers"
	"github.com/elasticom/elasticom-backend/api/middleware"
	dashboardsvc "github.com/elasticom/elasticom-backend/internal/dashboard"
	elasticsvc "github.com/elasticom/elasticom-backend/internal/elasticity"
	simulationsvc "github.com/elasticom/elasticom-backend/internal/simulations"
	stockitemsvc "github.com/elasticom/elasticom-backend/internal/stockitems"
	transactionsvc "github.com/elasticom/elasticom-backend/internal/transactions"
	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	"github.com/elasticom/elasticom-backend/pkg/config"
	"github.com/elasticom/elasticom-backend/pkg/logger"
	"github.com/elasticom/elasticom-backend/pkg/metrics"
	"github.com/elasticom/elasticom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	analysisCache *pkgcache.Cache,
	httpMetrics *metrics.HTTPMetrics,
	metricsRegistry *prometheus.Registry,
	elasticityService elasticsvc.Service,
	dashboardService dashboardsvc.Service,
	simulationService simulationsvc.Service,
	stockItemService stockitemsvc.Service,
	transactionService transactionsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	if httpMetrics != nil {
		r.Use(middleware.Metrics(httpMetrics))
	}

	importLimit := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		importPolicy := middleware.NewRateLimitPolicy(
			"import",
			cfg.Import.RateLimitWindow,
			cfg.Import.RateLimitBurst,
		)
		importLimit = middleware.RateLimit(importPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, logg))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/elasticity", func(r chi.Router) {
		r.Get("/", controllers.GetElasticity(elasticityService, logg))
		r.Get("/segments/{segment}", controllers.GetSegmentElasticity(elasticityService, logg))
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/kpis", controllers.DashboardKPIs(dashboardService, logg))
		r.Get("/segments", controllers.DashboardSegments(dashboardService, logg))
		r.Get("/trends", controllers.DashboardTrends(dashboardService, logg))
	})

	r.Post("/simulate", controllers.RunSimulation(simulationService, logg))

	r.Route("/simulations", func(r chi.Router) {
		r.Get("/", controllers.ListSimulations(simulationService, logg))
		r.Post("/", controllers.CreateSimulation(simulationService, logg))
		r.Route("/{simulationID}", func(r chi.Router) {
			r.Get("/", controllers.GetSimulation(simulationService, logg))
			r.Put("/", controllers.UpdateSimulation(simulationService, logg))
			r.Delete("/", controllers.DeleteSimulation(simulationService, logg))
			r.Get("/metrics", controllers.GetSimulationMetrics(simulationService, logg))
		})
	})

	r.Route("/stock-items", func(r chi.Router) {
		r.Get("/", controllers.SearchStockItems(stockItemService, logg))
		r.Get("/{code}", controllers.GetStockItem(stockItemService, logg))
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", controllers.ListTransactions(transactionService, logg))
		r.Post("/", controllers.CreateTransaction(transactionService, logg))
		r.With(importLimit).Post("/batch", controllers.CreateTransactionsBatch(transactionService, logg))
		r.Delete("/", controllers.DeleteAllTransactions(transactionService, logg))
		r.Route("/{transactionID}", func(r chi.Router) {
			r.Get("/", controllers.GetTransaction(transactionService, logg))
			r.Put("/", controllers.UpdateTransaction(transactionService, logg))
			r.Delete("/", controllers.DeleteTransaction(transactionService, logg))
		})
	})

	r.Route("/cache", func(r chi.Router) {
		r.Get("/stats", controllers.CacheStats(analysisCache, logg))
		r.Post("/clear", controllers.CacheClear(analysisCache, logg))
	})

	return r
}
