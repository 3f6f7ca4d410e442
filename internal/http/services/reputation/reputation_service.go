// Package reputation implementa los lookups de reputación (dominio, IP) y
// la validación de API keys contra el threat-intelligence provider.
package reputation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
	"github.com/dropDatabas3/trustgate/internal/provider"
)

// LookupResult es el resultado normalizado de un lookup de reputación.
type LookupResult struct {
	// Malicious es la cantidad de engines que marcaron la entidad.
	Malicious int
}

// Service define las operaciones de reputación.
type Service interface {
	// CheckDomain consulta la reputación de un dominio.
	CheckDomain(ctx context.Context, apiKey, entry string) (*LookupResult, error)

	// CheckIP consulta la reputación de una dirección IP.
	CheckIP(ctx context.Context, apiKey, entry string) (*LookupResult, error)

	// ValidateKey verifica si una API key es válida probándola contra un
	// target fijo. Sin cache: cada llamada emite su propio probe.
	ValidateKey(ctx context.Context, apiKey string) error
}

type service struct {
	fw          *provider.Forwarder
	baseURL     string
	probeTarget string
}

// NewService crea el service de reputación.
func NewService(fw *provider.Forwarder, baseURL, probeTarget string) Service {
	return &service{
		fw:          fw,
		baseURL:     strings.TrimRight(baseURL, "/"),
		probeTarget: probeTarget,
	}
}

// lookupPayload es el subconjunto del payload del provider que nos importa.
// Deliberadamente tolerante: cualquier campo ausente queda en cero.
type lookupPayload struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats struct {
				Malicious int `json:"malicious"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// lookup ejecuta el fetch y la extracción del malice count.
func (s *service) lookup(ctx context.Context, apiKey, entry, pathPrefix string) (*LookupResult, error) {
	// Pre-red: input inválido jamás genera una llamada saliente.
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(entry) == "" {
		return nil, httperrors.ErrMissingLookupFields
	}

	resp, err := s.fw.Do(ctx, provider.Request{
		Provider: "reputation",
		Method:   http.MethodGet,
		BaseURL:  s.baseURL,
		Path:     pathPrefix + url.PathEscape(strings.TrimSpace(entry)),
	}, provider.APIKey(apiKey))
	if err != nil {
		return nil, httperrors.ErrUpstream.WithCause(err)
	}

	if !resp.OK() {
		// El status del provider se propaga; su body no.
		return nil, httperrors.ErrUpstream.
			WithStatus(resp.StatusCode).
			WithDetail(fmt.Sprintf("el provider de reputación respondió %d", resp.StatusCode))
	}

	// Política deliberada: entidad sin análisis == malice count 0, nunca un
	// error. La ausencia de datos de análisis no es ausencia de amenaza,
	// pero tampoco es un fallo del lookup.
	var payload lookupPayload
	if err := resp.DecodeJSON(&payload); err != nil {
		logger.From(ctx).Debug("reputation payload sin stats, usando 0",
			logger.Provider("reputation"),
			logger.Err(err),
		)
		return &LookupResult{Malicious: 0}, nil
	}

	return &LookupResult{Malicious: payload.Data.Attributes.LastAnalysisStats.Malicious}, nil
}

func (s *service) CheckDomain(ctx context.Context, apiKey, entry string) (*LookupResult, error) {
	return s.lookup(ctx, apiKey, entry, "/domains/")
}

func (s *service) CheckIP(ctx context.Context, apiKey, entry string) (*LookupResult, error) {
	return s.lookup(ctx, apiKey, entry, "/ip_addresses/")
}

// ValidateKey usa un lookup fijo y siempre resoluble como probe de
// autorización: el dato de reputación se descarta, solo importa el status.
// Probar con target fijo evita filtrar input del caller en el camino de
// validación de credenciales y mantiene el check O(1) y sin efectos.
func (s *service) ValidateKey(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return httperrors.ErrMissingFields.WithDetail("apiKey es requerido")
	}

	resp, err := s.fw.Do(ctx, provider.Request{
		Provider: "reputation",
		Method:   http.MethodGet,
		BaseURL:  s.baseURL,
		Path:     "/ip_addresses/" + url.PathEscape(s.probeTarget),
	}, provider.APIKey(apiKey))
	if err != nil {
		return httperrors.ErrUpstream.WithCause(err)
	}

	if !resp.OK() {
		return httperrors.ErrInvalidCredential.
			WithStatus(resp.StatusCode).
			WithDetail(fmt.Sprintf("el provider respondió %d al probe", resp.StatusCode))
	}
	return nil
}
