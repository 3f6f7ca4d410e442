// Package relay contiene los DTOs del relay de recursos protegidos.
package relay

// LocationResponse entrega la download location firmada. El string es
// opaco para el gateway: ni se interpreta ni se valida.
type LocationResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
}
