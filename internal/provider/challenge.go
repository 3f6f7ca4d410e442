package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/trustgate/internal/mfa"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// ChallengeClient implementa mfa.ChallengeProvider contra el servicio de
// detección de bots. El site secret es credencial de proceso.
type ChallengeClient struct {
	forwarder  *Forwarder
	baseURL    string
	siteSecret string
}

func NewChallengeClient(f *Forwarder, baseURL, siteSecret string) *ChallengeClient {
	return &ChallengeClient{
		forwarder:  f,
		baseURL:    strings.TrimRight(baseURL, "/"),
		siteSecret: siteSecret,
	}
}

var _ mfa.ChallengeProvider = (*ChallengeClient)(nil)

// Create instancia un challenge invisible y retorna su handle.
func (c *ChallengeClient) Create(ctx context.Context) (*mfa.ChallengeHandle, error) {
	resp, err := c.forwarder.Do(ctx, Request{
		Provider: "challenge",
		Method:   http.MethodPost,
		BaseURL:  c.baseURL,
		Path:     "/v1/challenges",
		Body:     map[string]string{"mode": "invisible"},
	}, Bearer(c.siteSecret))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("challenge provider: creación rechazada (status %d)", resp.StatusCode)
	}

	var out struct {
		ChallengeID string `json:"challengeId"`
		Token       string `json:"token"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("challenge provider: respuesta inválida: %w", err)
	}
	if out.ChallengeID == "" || out.Token == "" {
		return nil, fmt.Errorf("challenge provider: respuesta 2xx incompleta")
	}
	return &mfa.ChallengeHandle{ID: out.ChallengeID, Token: out.Token}, nil
}

// Release destruye el challenge. Best-effort e idempotente: se invoca desde
// hooks de evicción sin contexto de request, por eso el contexto propio con
// timeout corto. Un fallo acá solo se loguea.
func (c *ChallengeClient) Release(handle *mfa.ChallengeHandle) {
	if handle == nil || handle.ID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.forwarder.Do(ctx, Request{
		Provider: "challenge",
		Method:   http.MethodDelete,
		BaseURL:  c.baseURL,
		Path:     "/v1/challenges/" + handle.ID,
	}, Bearer(c.siteSecret))
	if err != nil {
		logger.L().Warn("challenge release failed",
			logger.Provider("challenge"),
			logger.Err(err),
		)
		return
	}
	if !resp.OK() && resp.StatusCode != http.StatusNotFound {
		// 404 == ya liberado; cualquier otra cosa se reporta y se sigue.
		logger.L().Warn("challenge release rejected",
			logger.Provider("challenge"),
			logger.UpstreamStatus(resp.StatusCode),
		)
	}
}
