package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/pkg/config"
	"github.com/mercantile-app/mercantile-backend/pkg/db"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/mercantile-app/mercantile-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mercantile-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mercantile-Env", cfg.App.Env)

		checks := []struct {
			name   string
			pinger interface {
				Ping(context.Context) error
			}
		}{
			{name: "postgres", pinger: dbP},
			{name: "redis", pinger: redisP},
		}

		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
			err := check.pinger.Ping(ctx)
			cancel()
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable").
						WithDetails(map[string]any{"dependency": check.name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
