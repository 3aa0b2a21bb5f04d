package controllers

import (
	"fmt"
	"net/http"

	"github.com/elasticom/elasticom-backend/api/responses"
	"github.com/elasticom/elasticom-backend/api/validators"
	pkgcache "github.com/elasticom/elasticom-backend/pkg/cache"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/logger"
)

type cacheClearResponse struct {
	Cleared int    `json:"cleared"`
	Message string `json:"message"`
}

// CacheStats reports in-process cache counters.
func CacheStats(cache *pkgcache.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cache unavailable"))
			return
		}
		responses.WriteSuccess(w, cache.Stats())
	}
}

// CacheClear drops cached analysis entries, all of them or just those
// under an optional key prefix.
func CacheClear(cache *pkgcache.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cache == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cache unavailable"))
			return
		}

		var cleared int
		if prefix := validators.SanitizeString(r.URL.Query().Get("prefix"), 200); prefix != "" {
			cleared = cache.ClearPrefix(prefix)
		} else {
			cleared = cache.Stats().Entries
			cache.Clear()
		}

		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "cleared", cleared), "cache.cleared")
		}
		responses.WriteSuccess(w, cacheClearResponse{
			Cleared: cleared,
			Message: fmt.Sprintf("Cleared %d cached entries", cleared),
		})
	}
}
