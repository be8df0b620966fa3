package controllers

import (
	"net/http"

	"github.com/nexusmarket/backend/api/responses"
	seedsvc "github.com/nexusmarket/backend/internal/seed"
	"github.com/nexusmarket/backend/pkg/config"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/logger"
)

// SeedDemoData loads demo fixtures. Only available in development with the
// seed flag enabled.
func SeedDemoData(svc seedsvc.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seed service unavailable"))
			return
		}

		if !cfg.App.IsDev() || !cfg.FeatureFlags.AllowSeed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seeding disabled"))
			return
		}

		seeded, err := svc.Run(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !seeded {
			responses.WriteSuccess(w, map[string]any{"seeded": false, "reason": "database already has users"})
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"seeded": true})
	}
}
