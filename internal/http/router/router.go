// Package router contains the route aggregator del gateway.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/health"
	mfactrl "github.com/dropDatabas3/trustgate/internal/http/controllers/mfa"
	partnerctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/partner"
	relayctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/relay"
	reputationctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/reputation"
	"github.com/dropDatabas3/trustgate/internal/http/errors"
	mw "github.com/dropDatabas3/trustgate/internal/http/middlewares"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	// Controllers
	Reputation *reputationctrl.Controller
	Partner    *partnerctrl.Controller
	Relay      *relayctrl.Controller
	MFA        *mfactrl.Controller
	Health     *healthctrl.Controller

	// RateLimiter opcional; nil desactiva rate limiting.
	RateLimiter mw.RateLimiter

	// Registry para /metrics; nil usa el registry default de prometheus.
	Registry *prometheus.Registry
}

// New arma el router completo del gateway.
func New(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// 404/405 también salen con el envelope estándar.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		errors.WriteError(w, errors.ErrMethodNotAllowed)
	})

	registerReputationRoutes(r, deps)
	registerPartnerRoutes(r, deps)
	registerRelayRoutes(r, deps)
	registerMFARoutes(r, deps)
	registerHealthRoutes(r, deps)

	return r
}

// chain arma el middleware chain estándar para una ruta pública.
//
// Orden: Recover → RequestID → CORS → SecurityHeaders → NoStore → RateLimit
// → Logging. CORS recibe EXACTAMENTE los verbos que la ruta registra; el
// preflight se contesta en el middleware, por eso cada ruta registra también
// OPTIONS apuntando al mismo handler.
func chain(deps Deps, handler http.HandlerFunc, methods ...string) http.Handler {
	mws := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithCORS(methods...),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(), // todas las respuestas llevan credenciales o derivados
	}

	if deps.RateLimiter != nil {
		mws = append(mws, mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: deps.RateLimiter,
			KeyFunc: mw.IPRateKey,
		}))
	}

	mws = append(mws, mw.WithLogging())

	return mw.ChainFunc(handler, mws...)
}

// register registra el handler en cada verbo de la ruta más OPTIONS para el
// preflight. La lista de verbos es la misma que anuncia el CORS: un solo
// punto de verdad.
func register(r chi.Router, pattern string, h http.Handler, methods ...string) {
	for _, m := range methods {
		r.Method(m, pattern, h)
	}
	r.Method(http.MethodOptions, pattern, h)
}

// registerHealthRoutes registra los endpoints operativos. Sin CORS ni rate
// limiting: los consume la infraestructura, no el dashboard.
func registerHealthRoutes(r chi.Router, deps Deps) {
	if deps.Health == nil {
		return
	}

	ops := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
	}

	r.Method(http.MethodGet, "/healthz", mw.ChainFunc(deps.Health.Healthz, ops...))
	r.Method(http.MethodGet, "/readyz", mw.ChainFunc(deps.Health.Readyz, ops...))

	var metricsHandler http.Handler
	if deps.Registry != nil {
		metricsHandler = promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})
	} else {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
}
