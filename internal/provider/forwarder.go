// Package provider construye las llamadas salientes hacia los providers
// externos (threat intelligence, partner platform, identity provider).
//
// El forwarder estampa la credencial correcta y devuelve la respuesta cruda
// (status + body) sin normalizar: cada provider da forma distinta a sus
// respuestas de éxito/error, así que la normalización es responsabilidad del
// service que llama.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/trustgate/internal/metrics"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// Request describe una llamada saliente a un provider.
type Request struct {
	// Provider es el nombre lógico para logs y métricas ("reputation",
	// "partner", "identity", "challenge").
	Provider string

	Method  string
	BaseURL string
	Path    string
	Query   url.Values

	// Body se serializa como JSON si no es nil.
	Body any
}

// Response es la respuesta cruda del provider.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reporta si el status es 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON deserializa el body en v. Tolerante a campos desconocidos.
func (r *Response) DecodeJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Forwarder emite llamadas salientes con la credencial correcta por esquema.
type Forwarder struct {
	client *http.Client
}

// DefaultTimeout aplica cuando un provider no configura el suyo.
const DefaultTimeout = 15 * time.Second

// NewForwarder crea un forwarder con el timeout dado.
func NewForwarder(timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{
		client: &http.Client{Timeout: timeout},
	}
}

// NewForwarderWithClient permite inyectar un *http.Client propio.
// Usado en tests para contar o interceptar llamadas salientes.
func NewForwarderWithClient(client *http.Client) *Forwarder {
	return &Forwarder{client: client}
}

// maxUpstreamBody limita cuánto leemos de un provider (4MB).
const maxUpstreamBody = 4 << 20

// Do emite la llamada y retorna la respuesta cruda.
// La cancelación del contexto entrante abandona la llamada saliente.
func (f *Forwarder) Do(ctx context.Context, preq Request, cred Credential) (*Response, error) {
	u := strings.TrimRight(preq.BaseURL, "/") + preq.Path
	if len(preq.Query) > 0 {
		u += "?" + preq.Query.Encode()
	}

	var bodyReader io.Reader
	if preq.Body != nil {
		raw, err := json.Marshal(preq.Body)
		if err != nil {
			return nil, fmt.Errorf("provider %s: marshal body: %w", preq.Provider, err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, preq.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("provider %s: build request: %w", preq.Provider, err)
	}
	if preq.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cred != nil {
		cred.apply(req)
	}

	log := logger.From(ctx).With(
		logger.Layer("provider"),
		logger.Provider(preq.Provider),
	)

	start := time.Now()
	resp, err := f.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(preq.Provider, "error").Inc()
		log.Warn("upstream call failed", logger.Err(err), logger.Duration(elapsed))
		return nil, fmt.Errorf("provider %s: %w", preq.Provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(preq.Provider, "error").Inc()
		return nil, fmt.Errorf("provider %s: read body: %w", preq.Provider, err)
	}

	metrics.UpstreamRequests.WithLabelValues(preq.Provider, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamLatency.WithLabelValues(preq.Provider).Observe(float64(elapsed.Milliseconds()))

	log.Debug("upstream call completed",
		logger.UpstreamStatus(resp.StatusCode),
		logger.Duration(elapsed),
	)

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
