package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/clothing-store-backend/api/responses"
	"github.com/angelmondragon/clothing-store-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
	"github.com/angelmondragon/clothing-store-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is implemented by the DB and Redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a pinger for readiness reporting.
type Dependency struct {
	Name   string
	Pinger Pinger
}

type healthResponse struct {
	Status    string            `json:"status"`
	Env       string            `json:"env"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports that the process is serving requests.
func Health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, healthResponse{
			Status:    "ok",
			Env:       cfg.App.Env,
			Timestamp: time.Now().UTC(),
		})
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, healthResponse{
			Status:    "live",
			Env:       cfg.App.Env,
			Timestamp: time.Now().UTC(),
		})
	}
}

// HealthReady pings every dependency and fails with 500 when any is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		var errs error
		for _, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			if err := dep.Pinger.Ping(ctx); err != nil {
				checks[dep.Name] = "down"
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", dep.Name, err))
				continue
			}
			checks[dep.Name] = "up"
		}

		if errs != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, healthResponse{
			Status:    "ready",
			Env:       cfg.App.Env,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}
