package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	healthctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/health"
	mfactrl "github.com/dropDatabas3/trustgate/internal/http/controllers/mfa"
	partnerctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/partner"
	relayctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/relay"
	reputationctrl "github.com/dropDatabas3/trustgate/internal/http/controllers/reputation"
	partnersvc "github.com/dropDatabas3/trustgate/internal/http/services/partner"
	reputationsvc "github.com/dropDatabas3/trustgate/internal/http/services/reputation"
	"github.com/dropDatabas3/trustgate/internal/mfa"
)

// ---- fakes de services ----

type fakeReputation struct{ malicious int }

func (f *fakeReputation) CheckDomain(context.Context, string, string) (*reputationsvc.LookupResult, error) {
	return &reputationsvc.LookupResult{Malicious: f.malicious}, nil
}
func (f *fakeReputation) CheckIP(context.Context, string, string) (*reputationsvc.LookupResult, error) {
	return &reputationsvc.LookupResult{Malicious: f.malicious}, nil
}
func (f *fakeReputation) ValidateKey(context.Context, string) error { return nil }

type fakePartner struct{}

func (fakePartner) Exchange(context.Context, string, string) (*partnersvc.TokenResult, error) {
	return &partnersvc.TokenResult{Token: "tok"}, nil
}

type fakeRelay struct {
	gotVersion, gotName, gotToken string
}

func (f *fakeRelay) FetchDownloadLocation(_ context.Context, token, version, name string) (string, error) {
	f.gotToken, f.gotVersion, f.gotName = token, version, name
	return "https://cdn.example.com/signed", nil
}

type noopChallenges struct{}

func (noopChallenges) Create(context.Context) (*mfa.ChallengeHandle, error) {
	return &mfa.ChallengeHandle{ID: "ch", Token: "t"}, nil
}
func (noopChallenges) Release(*mfa.ChallengeHandle) {}

type noopIdentity struct{}

func (noopIdentity) StartPhoneVerification(context.Context, string, string, string) (string, error) {
	return "verif", nil
}
func (noopIdentity) ConfirmEnrollment(context.Context, string, string, string) error { return nil }

func newTestRouter(t *testing.T) (*fakeRelay, http.Handler) {
	t.Helper()
	relay := &fakeRelay{}
	h := New(Deps{
		Reputation: reputationctrl.NewController(&fakeReputation{malicious: 3}),
		Partner:    partnerctrl.NewController(fakePartner{}),
		Relay:      relayctrl.NewController(relay),
		MFA:        mfactrl.NewController(mfa.NewOrchestrator(0, noopChallenges{}, noopIdentity{})),
		Health:     healthctrl.NewController(),
	})
	return relay, h
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ReputationDomainEnvelope(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodPost, "/v1/reputation/domain", `{"apiKey":"k","entry":"x.example"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success   bool `json:"success"`
		Malicious int  `json:"malicious"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 3, body.Malicious)
}

func TestRouter_PreflightAnnouncesOnlyImplementedVerbs(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodOptions, "/v1/reputation/domain", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = doJSON(h, http.MethodOptions, "/v1/artifacts/1.0/rules.db", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRouter_WrongVerbGets405Envelope(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodGet, "/v1/reputation/domain", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "METHOD_NOT_ALLOWED", body.Code)
}

func TestRouter_UnknownPathGets404Envelope(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodGet, "/v1/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
}

func TestRouter_ArtifactPathParamsAndBearer(t *testing.T) {
	relay, h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/artifacts/2.1.0/rules.db", nil)
	req.Header.Set("Authorization", "Bearer tok-xyz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2.1.0", relay.gotVersion)
	require.Equal(t, "rules.db", relay.gotName)
	require.Equal(t, "tok-xyz", relay.gotToken)
}

func TestRouter_MFAStartReturnsSession(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodPost, "/v1/mfa/start", `{"userRef":"user-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success   bool   `json:"success"`
		SessionID string `json:"sessionId"`
		State     string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.SessionID)
	require.Equal(t, "challenge_ready", body.State)
}

func TestRouter_MFAUnknownSessionIs404(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodPost, "/v1/mfa/phone", `{"sessionId":"nope","phoneNumber":"+549110000"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthzAlwaysOK(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ResponsesAreNoStore(t *testing.T) {
	_, h := newTestRouter(t)

	rec := doJSON(h, http.MethodPost, "/v1/partner/token", `{"username":"u","password":"p"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}
