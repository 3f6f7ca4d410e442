// Package health contains the liveness and readiness controllers.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/trustgate/internal/http/helpers"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// Check es una verificación de readiness con nombre.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Controller handles /healthz and /readyz.
type Controller struct {
	checks []Check
}

// NewController creates the controller with the given readiness checks.
func NewController(checks ...Check) *Controller {
	return &Controller{checks: checks}
}

// Healthz handles GET /healthz: el proceso está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  "ok",
	})
}

// Readyz handles GET /readyz: el proceso puede atender tráfico. El gateway
// es stateless, así que los checks son pocos (ej: Redis si el rate limiter
// lo usa). Un check fallido degrada a 503 sin tumbar el proceso.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(c.checks))
	for _, check := range c.checks {
		if err := check.Fn(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness check failed",
				logger.Component("health"),
				logger.String("check", check.Name),
				logger.Err(err),
			)
			results[check.Name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	helpers.WriteJSON(w, status, map[string]any{
		"success": status == http.StatusOK,
		"checks":  results,
	})
}
