package relay

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/provider"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestService(rt rtFunc) Service {
	fw := provider.NewForwarderWithClient(&http.Client{Transport: rt})
	return NewService(fw, "https://partner.example.com", "/downloads")
}

func TestFetchDownloadLocation_HappyPath(t *testing.T) {
	var gotAuth, gotPath string
	svc := newTestService(func(r *http.Request) (*http.Response, error) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		return jsonResponse(200, `{"downloadUrl":"https://cdn.example.com/signed?sig=abc"}`), nil
	})

	loc, err := svc.FetchDownloadLocation(context.Background(), "tok-123", "2.1.0", "rules.db")
	require.NoError(t, err)
	// La location es opaca: viaja tal cual.
	require.Equal(t, "https://cdn.example.com/signed?sig=abc", loc)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "/downloads/2.1.0/rules.db", gotPath)
}

func TestFetchDownloadLocation_LocationFieldFallback(t *testing.T) {
	svc := newTestService(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"location":"https://cdn.example.com/alt"}`), nil
	})

	loc, err := svc.FetchDownloadLocation(context.Background(), "tok-123", "1.0", "x")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/alt", loc)
}

func TestFetchDownloadLocation_StatusMapping(t *testing.T) {
	cases := []struct {
		upstream int
		kind     httperrors.Kind
		status   int
	}{
		{401, httperrors.KindUnauthenticated, http.StatusUnauthorized},
		{403, httperrors.KindForbidden, http.StatusForbidden},
		{404, httperrors.KindNotFound, http.StatusNotFound},
		{500, httperrors.KindUpstreamError, http.StatusInternalServerError},
	}
	for _, c := range cases {
		svc := newTestService(func(*http.Request) (*http.Response, error) {
			return jsonResponse(c.upstream, `{"message":"provider detail"}`), nil
		})
		_, err := svc.FetchDownloadLocation(context.Background(), "tok-123", "1.0", "x")
		require.Error(t, err, "upstream %d", c.upstream)

		appErr := httperrors.FromError(err)
		require.Equal(t, c.kind, appErr.Kind, "upstream %d", c.upstream)
		require.Equal(t, c.status, appErr.HTTPStatus, "upstream %d", c.upstream)
	}
}

func TestFetchDownloadLocation_MissingBearerNeverCallsOut(t *testing.T) {
	calls := 0
	svc := newTestService(func(*http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(200, `{}`), nil
	})

	_, err := svc.FetchDownloadLocation(context.Background(), "", "1.0", "x")
	require.Error(t, err)
	require.Equal(t, httperrors.KindUnauthenticated, httperrors.FromError(err).Kind)
	require.Zero(t, calls)
}

func TestFetchDownloadLocation_2xxWithoutLocationIsProtocolViolation(t *testing.T) {
	svc := newTestService(func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"status":"ok"}`), nil
	})

	_, err := svc.FetchDownloadLocation(context.Background(), "tok-123", "1.0", "x")
	require.Error(t, err)
	require.Equal(t, httperrors.KindUpstreamProtocol, httperrors.FromError(err).Kind)
}

func TestFetchDownloadLocation_UpstreamBodyNotEchoed(t *testing.T) {
	svc := newTestService(func(*http.Request) (*http.Response, error) {
		return jsonResponse(502, `{"internal":"stack trace with hostnames"}`), nil
	})

	_, err := svc.FetchDownloadLocation(context.Background(), "tok-123", "1.0", "x")
	require.Error(t, err)
	appErr := httperrors.FromError(err)
	require.NotContains(t, appErr.Message, "stack trace")
	require.NotContains(t, appErr.Detail, "stack trace")
}

func TestFetchDownloadLocation_PathEscapesSegments(t *testing.T) {
	var gotPath string
	svc := newTestService(func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.EscapedPath()
		return jsonResponse(200, `{"downloadUrl":"ok"}`), nil
	})

	_, err := svc.FetchDownloadLocation(context.Background(), "tok-123", "1.0", "a b")
	require.NoError(t, err)
	require.Equal(t, "/downloads/1.0/a%20b", gotPath)
}
