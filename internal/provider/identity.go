package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dropDatabas3/trustgate/internal/mfa"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// IdentityClient implementa mfa.IdentityProvider contra el identity
// provider federado vía HTTP. La API key es credencial de proceso: viene de
// config, no del caller.
type IdentityClient struct {
	forwarder *Forwarder
	baseURL   string
	apiKey    string
}

func NewIdentityClient(f *Forwarder, baseURL, apiKey string) *IdentityClient {
	return &IdentityClient{
		forwarder: f,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
	}
}

var _ mfa.IdentityProvider = (*IdentityClient)(nil)

// StartPhoneVerification pide el envío del SMS de verificación.
// Retorna el verificationId opaco del provider.
func (c *IdentityClient) StartPhoneVerification(ctx context.Context, userRef, phoneNumber, challengeToken string) (string, error) {
	resp, err := c.forwarder.Do(ctx, Request{
		Provider: "identity",
		Method:   http.MethodPost,
		BaseURL:  c.baseURL,
		Path:     "/v1/phone-verifications",
		Body: map[string]string{
			"userRef":        userRef,
			"phoneNumber":    phoneNumber,
			"challengeToken": challengeToken,
		},
	}, APIKey(c.apiKey))
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", fmt.Errorf("identity provider: verificación rechazada (status %d)", resp.StatusCode)
	}

	var out struct {
		VerificationID string `json:"verificationId"`
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return "", fmt.Errorf("identity provider: respuesta inválida: %w", err)
	}
	if strings.TrimSpace(out.VerificationID) == "" {
		// 2xx sin verificationId es una violación de contrato del provider.
		return "", fmt.Errorf("identity provider: respuesta 2xx sin verificationId")
	}
	return out.VerificationID, nil
}

// ConfirmEnrollment completa el enrolamiento con código + verificationId.
// El verificationId viaja textual, tal como lo emitió el provider.
func (c *IdentityClient) ConfirmEnrollment(ctx context.Context, userRef, verificationID, code string) error {
	resp, err := c.forwarder.Do(ctx, Request{
		Provider: "identity",
		Method:   http.MethodPost,
		BaseURL:  c.baseURL,
		Path:     "/v1/phone-verifications/confirm",
		Body: map[string]string{
			"userRef":        userRef,
			"verificationId": verificationID,
			"code":           code,
		},
	}, APIKey(c.apiKey))
	if err != nil {
		return err
	}
	if !resp.OK() {
		logger.From(ctx).Debug("enrollment confirm rejected",
			logger.Provider("identity"),
			logger.UpstreamStatus(resp.StatusCode),
		)
		return fmt.Errorf("identity provider: confirmación rechazada (status %d)", resp.StatusCode)
	}
	return nil
}
