package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/elasticom/elasticom-backend/api/responses"
	"github.com/elasticom/elasticom-backend/api/validators"
	stockitemsvc "github.com/elasticom/elasticom-backend/internal/stockitems"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/logger"
)

// SearchStockItems serves the stock item grid with optional text search.
func SearchStockItems(svc stockitemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock item service unavailable"))
			return
		}

		start, err := validators.ParseQueryDate(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<31-1)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Search(r.Context(), stockitemsvc.SearchParams{
			Query:     validators.SanitizeString(r.URL.Query().Get("query"), 256),
			Limit:     limit,
			Offset:    offset,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetStockItem serves the detailed elasticity view of one stock item.
func GetStockItem(svc stockitemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock item service unavailable"))
			return
		}

		code := chi.URLParam(r, "code")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stock code is required"))
			return
		}

		start, err := validators.ParseQueryDate(r, "start_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), code, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
