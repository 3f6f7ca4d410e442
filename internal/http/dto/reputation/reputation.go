// Package reputation contiene los DTOs de los endpoints de reputación.
package reputation

// LookupRequest es el body de POST /v1/reputation/{domain,ip}.
type LookupRequest struct {
	APIKey string `json:"apiKey"`
	Entry  string `json:"entry"`
}

// LookupResponse es la respuesta normalizada de un lookup.
type LookupResponse struct {
	Success   bool `json:"success"`
	Malicious int  `json:"malicious"`
}

// ValidateKeyRequest es el body de POST /v1/reputation/validate-key.
type ValidateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// ValidateKeyResponse confirma que la key es válida. El dato de reputación
// del probe se descarta: solo viaja la confirmación.
type ValidateKeyResponse struct {
	Success bool            `json:"success"`
	Data    ValidateKeyData `json:"data"`
}

type ValidateKeyData struct {
	Valid bool `json:"valid"`
}
