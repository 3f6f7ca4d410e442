// Package partner contiene los DTOs del canje de credenciales.
package partner

// ExchangeRequest es el body de POST /v1/partner/token.
type ExchangeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ExchangeResponse entrega el bearer token de corta vida y su expiración
// (Unix seconds, 0 si el partner no la informó).
type ExchangeResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Exp     int64  `json:"exp"`
}
