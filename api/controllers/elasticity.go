package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/elasticom/elasticom-backend/api/responses"
	"github.com/elasticom/elasticom-backend/api/validators"
	elasticsvc "github.com/elasticom/elasticom-backend/internal/elasticity"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/logger"
)

// GetElasticity estimates price elasticity of demand per product over the
// requested scope.
func GetElasticity(svc elasticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "elasticity service unavailable"))
			return
		}

		filter, err := elasticityFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Calculate(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetSegmentElasticity estimates per-product elasticity restricted to the
// customers of one raw RFM segment.
func GetSegmentElasticity(svc elasticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "elasticity service unavailable"))
			return
		}

		segment := chi.URLParam(r, "segment")
		if segment == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "segment is required"))
			return
		}

		reference, start, end, err := analysisWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.BySegment(r.Context(), segment, reference, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

func elasticityFilter(r *http.Request) (elasticsvc.Filter, error) {
	start, err := validators.ParseQueryDate(r, "start_date")
	if err != nil {
		return elasticsvc.Filter{}, err
	}
	end, err := validators.ParseQueryDate(r, "end_date")
	if err != nil {
		return elasticsvc.Filter{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 200, 1, 1000)
	if err != nil {
		return elasticsvc.Filter{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<31-1)
	if err != nil {
		return elasticsvc.Filter{}, err
	}

	return elasticsvc.Filter{
		StockCodes: validators.ParseQueryList(r, "stock_codes"),
		StartDate:  start,
		EndDate:    end,
		Country:    validators.SanitizeString(r.URL.Query().Get("country"), 64),
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// analysisWindow reads the shared date-scoping parameters of the analytics
// endpoints. The reference date defaults to today.
func analysisWindow(r *http.Request) (time.Time, *time.Time, *time.Time, error) {
	start, err := validators.ParseQueryDate(r, "start_date")
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	end, err := validators.ParseQueryDate(r, "end_date")
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	reference := time.Now().UTC()
	if ref, err := validators.ParseQueryDate(r, "reference_date"); err != nil {
		return time.Time{}, nil, nil, err
	} else if ref != nil {
		reference = *ref
	}
	return reference, start, end, nil
}
