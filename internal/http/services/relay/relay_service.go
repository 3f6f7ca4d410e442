// Package relay reenvía bearer tokens hacia la partner platform para
// obtener download locations firmadas y de vida corta.
package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/provider"
)

// Service define el relay de recursos protegidos.
type Service interface {
	// FetchDownloadLocation obtiene la ubicación de descarga firmada para
	// un recurso versionado. La ubicación es opaca: no se interpreta ni se
	// valida, se entrega tal cual.
	FetchDownloadLocation(ctx context.Context, bearerToken, version, name string) (string, error)
}

type service struct {
	fw           *provider.Forwarder
	baseURL      string
	downloadPath string
}

// NewService crea el relay.
func NewService(fw *provider.Forwarder, baseURL, downloadPath string) Service {
	return &service{
		fw:           fw,
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		downloadPath: strings.TrimRight(downloadPath, "/"),
	}
}

// locationPayload cubre las variantes de respuesta del partner.
type locationPayload struct {
	DownloadURL      string `json:"downloadUrl"`
	DownloadURLSnake string `json:"download_url"`
	Location         string `json:"location"`
	// Mensaje de error del provider para non-2xx. Solo el mensaje se
	// propaga; el body completo jamás.
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *service) FetchDownloadLocation(ctx context.Context, bearerToken, version, name string) (string, error) {
	// Pre-red: sin bearer no hay llamada saliente.
	if strings.TrimSpace(bearerToken) == "" {
		return "", httperrors.ErrTokenMissing
	}
	if strings.TrimSpace(version) == "" || strings.TrimSpace(name) == "" {
		return "", httperrors.ErrMissingFields.WithDetail("version y nombre de recurso son requeridos")
	}
	if s.baseURL == "" {
		return "", httperrors.ErrConfiguration.WithDetail("partner.base_url no configurado")
	}

	resp, err := s.fw.Do(ctx, provider.Request{
		Provider: "partner",
		Method:   http.MethodGet,
		BaseURL:  s.baseURL,
		Path:     s.downloadPath + "/" + url.PathEscape(version) + "/" + url.PathEscape(name),
	}, provider.Bearer(bearerToken))
	if err != nil {
		return "", httperrors.ErrUpstream.WithCause(err)
	}

	var payload locationPayload
	_ = resp.DecodeJSON(&payload) // tolerante: non-2xx puede no traer JSON

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", httperrors.ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return "", httperrors.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return "", httperrors.ErrNotFound.WithDetail("el recurso solicitado no existe en el partner")
	case !resp.OK():
		e := httperrors.ErrUpstream.
			WithStatus(resp.StatusCode).
			WithDetail(fmt.Sprintf("el partner respondió %d", resp.StatusCode))
		if msg := firstNonEmpty(payload.Error, payload.Message); msg != "" {
			e = e.WithDetail(msg)
		}
		return "", e
	}

	loc := firstNonEmpty(payload.DownloadURL, payload.DownloadURLSnake, payload.Location)
	if loc == "" {
		return "", httperrors.ErrUpstreamProtocol.WithDetail("respuesta 2xx sin download location")
	}
	return loc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
