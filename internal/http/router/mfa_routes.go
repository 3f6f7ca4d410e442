package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// registerMFARoutes registra el flujo de enrolamiento MFA.
// Todo POST con sessionId en el body: el ID de sesión identifica estado
// server-side, no viaja en URLs que terminan en logs de acceso.
func registerMFARoutes(r chi.Router, deps Deps) {
	c := deps.MFA
	if c == nil {
		return
	}

	register(r, "/v1/mfa/start", chain(deps, c.Start, http.MethodPost), http.MethodPost)
	register(r, "/v1/mfa/phone", chain(deps, c.SubmitPhone, http.MethodPost), http.MethodPost)
	register(r, "/v1/mfa/confirm", chain(deps, c.ConfirmCode, http.MethodPost), http.MethodPost)
	register(r, "/v1/mfa/retry", chain(deps, c.Retry, http.MethodPost), http.MethodPost)
	register(r, "/v1/mfa/abandon", chain(deps, c.Abandon, http.MethodPost), http.MethodPost)
}
