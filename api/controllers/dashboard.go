package controllers

import (
	"net/http"

	"github.com/elasticom/elasticom-backend/api/responses"
	dashboardsvc "github.com/elasticom/elasticom-backend/internal/dashboard"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/logger"
)

// DashboardKPIs serves the per-segment KPI panel.
func DashboardKPIs(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return dashboardPanel(svc, logg, func(r *http.Request) (any, error) {
		reference, start, end, err := analysisWindow(r)
		if err != nil {
			return nil, err
		}
		return svc.KPIMetrics(r.Context(), reference, start, end)
	})
}

// DashboardSegments serves the segment treemap.
func DashboardSegments(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return dashboardPanel(svc, logg, func(r *http.Request) (any, error) {
		reference, start, end, err := analysisWindow(r)
		if err != nil {
			return nil, err
		}
		return svc.SegmentTreeMap(r.Context(), reference, start, end)
	})
}

// DashboardTrends serves the daily revenue-by-segment series.
func DashboardTrends(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return dashboardPanel(svc, logg, func(r *http.Request) (any, error) {
		reference, start, end, err := analysisWindow(r)
		if err != nil {
			return nil, err
		}
		return svc.RevenueTrends(r.Context(), reference, start, end)
	})
}

func dashboardPanel(svc dashboardsvc.Service, logg *logger.Logger, compute func(*http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}
		payload, err := compute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
