// Package partner implementa el canje de credenciales de la partner
// platform por un bearer token de corta vida.
package partner

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
	"github.com/dropDatabas3/trustgate/internal/provider"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// TokenResult es el resultado del canje.
type TokenResult struct {
	Token  string
	Expiry time.Time
}

// Service define el canje de credenciales.
type Service interface {
	// Exchange canjea username/password por un bearer token + expiry.
	Exchange(ctx context.Context, username, password string) (*TokenResult, error)
}

type service struct {
	fw        *provider.Forwarder
	baseURL   string
	tokenPath string
}

// NewService crea el service. baseURL puede venir vacío: en ese caso cada
// request falla con error de configuración (500) sin tumbar el proceso.
func NewService(fw *provider.Forwarder, baseURL, tokenPath string) Service {
	return &service{
		fw:        fw,
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokenPath: tokenPath,
	}
}

// tokenPayload cubre las variantes de respuesta del partner.
type tokenPayload struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	Expiration  string `json:"expiration"` // RFC3339
	ExpiresIn   int64  `json:"expires_in"` // segundos
}

func (s *service) Exchange(ctx context.Context, username, password string) (*TokenResult, error) {
	// Pre-red: campos vacíos no generan llamada saliente. El contrato
	// histórico del dashboard espera 500 acá, no 400.
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, httperrors.ErrMissingLookupFields
	}

	// Config ausente es un problema NUESTRO, no del caller: jamás se
	// presenta como fallo de autenticación.
	if s.baseURL == "" {
		return nil, httperrors.ErrConfiguration.WithDetail("partner.base_url no configurado")
	}

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("partner.exchange"),
		logger.Secret("username", username),
	)

	resp, err := s.fw.Do(ctx, provider.Request{
		Provider: "partner",
		Method:   http.MethodPost,
		BaseURL:  s.baseURL,
		Path:     s.tokenPath,
	}, provider.Basic{Username: username, Password: password})
	if err != nil {
		return nil, httperrors.ErrUpstream.WithCause(err)
	}

	// 401 es accionable por el usuario: credenciales mal escritas. Se
	// distingue del resto de los non-2xx, que son problemas del provider.
	if resp.StatusCode == http.StatusUnauthorized {
		log.Info("partner rejected credentials")
		return nil, httperrors.ErrInvalidCredential.WithMessage("usuario o contraseña inválidos")
	}
	if !resp.OK() {
		return nil, httperrors.ErrUpstream.
			WithStatus(resp.StatusCode).
			WithDetail(fmt.Sprintf("el partner respondió %d", resp.StatusCode))
	}

	var payload tokenPayload
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, httperrors.ErrUpstreamProtocol.WithCause(err)
	}

	token := payload.AccessToken
	if token == "" {
		token = payload.Token
	}
	if token == "" {
		// 2xx sin token es una violación de contrato del provider, no un
		// éxito a medias.
		log.Warn("partner returned 2xx without token")
		return nil, httperrors.ErrUpstreamProtocol.WithDetail("respuesta 2xx sin access token")
	}

	return &TokenResult{Token: token, Expiry: resolveExpiry(payload, token)}, nil
}

// resolveExpiry obtiene la expiración del token, en orden de preferencia:
// campo expiration (RFC3339), expires_in (segundos), claim exp del JWT.
// El parse del JWT es sin verificar: solo leemos exp, la firma la valida
// el partner cuando recibe el token de vuelta.
func resolveExpiry(p tokenPayload, token string) time.Time {
	if p.Expiration != "" {
		if t, err := time.Parse(time.RFC3339, p.Expiration); err == nil {
			return t
		}
	}
	if p.ExpiresIn > 0 {
		return time.Now().UTC().Add(time.Duration(p.ExpiresIn) * time.Second)
	}

	parser := jwtv5.NewParser()
	claims := jwtv5.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Time{}
}
