package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// registerRelayRoutes registra el relay de recursos protegidos.
// GET con bearer en el header Authorization; version y name son path
// params porque no son credenciales.
func registerRelayRoutes(r chi.Router, deps Deps) {
	c := deps.Relay
	if c == nil {
		return
	}

	register(r, "/v1/artifacts/{version}/{name}", chain(deps, c.Location, http.MethodGet), http.MethodGet)
}
