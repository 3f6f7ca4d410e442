package middlewares

import (
	"net/http"
	"strings"
)

// corsMaxAge: cache del preflight en segundos (24h).
const corsMaxAge = "86400"

// corsAllowedHeaders: únicos headers que el dashboard envía a los endpoints
// del gateway.
const corsAllowedHeaders = "Content-Type, Authorization"

// WithCORS crea un middleware CORS para una ruta del gateway.
//
// methods debe listar EXACTAMENTE los verbos que la ruta implementa (sin
// OPTIONS, que agrega este middleware). Un desfase entre lo anunciado en el
// preflight y lo implementado es un defecto, no una decisión de diseño: por
// eso el router pasa la misma lista que registra.
//
// El gateway sirve a un dashboard público, por eso origen "*" y sin
// credenciales de cookie.
func WithCORS(methods ...string) Middleware {
	allowMethods := strings.Join(append(append([]string{}, methods...), http.MethodOptions), ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")

			// Preflight request
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
