package provider

import (
	"net/http"

	"github.com/dropDatabas3/trustgate/internal/util"
)

// Credential representa exactamente un esquema de autenticación saliente.
// Las credenciales viven solo durante la llamada que las usa: no se
// persisten, no se comparten entre requests y nunca se loguean en crudo.
type Credential interface {
	// apply estampa la credencial en el request saliente. Solo headers:
	// una credencial jamás va en la URL.
	apply(req *http.Request)

	// Masked retorna una representación segura para diagnósticos.
	Masked() string
}

// APIKey autentica con el header x-apikey (threat-intelligence providers).
type APIKey string

func (k APIKey) apply(req *http.Request) {
	req.Header.Set("x-apikey", string(k))
}

func (k APIKey) Masked() string { return util.MaskSecret(string(k)) }

// Basic autentica con Authorization: Basic base64(user:pass).
type Basic struct {
	Username string
	Password string
}

func (b Basic) apply(req *http.Request) {
	req.SetBasicAuth(b.Username, b.Password)
}

func (b Basic) Masked() string { return util.MaskBasicPair(b.Username) }

// Bearer autentica con Authorization: Bearer <token>.
type Bearer string

func (t Bearer) apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+string(t))
}

func (t Bearer) Masked() string { return util.MaskSecret(string(t)) }
