package controllers

import (
	"net/http"

	"github.com/elasticom/elasticom-backend/api/responses"
	"github.com/elasticom/elasticom-backend/pkg/config"
	pkgerrors "github.com/elasticom/elasticom-backend/pkg/errors"
	"github.com/elasticom/elasticom-backend/pkg/logger"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping() error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ElastiCom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, db Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ElastiCom-Env", cfg.App.Env)
		if db != nil {
			if err := db.Ping(); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
