package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// registerReputationRoutes registra los endpoints de reputación.
// Todos son POST: el apiKey viaja en el body, jamás en la URL.
func registerReputationRoutes(r chi.Router, deps Deps) {
	c := deps.Reputation
	if c == nil {
		return
	}

	register(r, "/v1/reputation/domain", chain(deps, c.CheckDomain, http.MethodPost), http.MethodPost)
	register(r, "/v1/reputation/ip", chain(deps, c.CheckIP, http.MethodPost), http.MethodPost)
	register(r, "/v1/reputation/validate-key", chain(deps, c.ValidateKey, http.MethodPost), http.MethodPost)
}
