package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// registerPartnerRoutes registra el canje de credenciales.
// POST: usuario y password viajan en el body, jamás en la URL.
func registerPartnerRoutes(r chi.Router, deps Deps) {
	c := deps.Partner
	if c == nil {
		return
	}

	register(r, "/v1/partner/token", chain(deps, c.Exchange, http.MethodPost), http.MethodPost)
}
