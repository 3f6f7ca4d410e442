// Package reputation contains the reputation lookup controllers.
package reputation

import (
	"context"
	"net/http"

	dto "github.com/dropDatabas3/trustgate/internal/http/dto/reputation"
	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/http/helpers"
	svc "github.com/dropDatabas3/trustgate/internal/http/services/reputation"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// Controller handles the reputation endpoints.
type Controller struct {
	service svc.Service
}

// NewController creates the controller.
func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// CheckDomain handles POST /v1/reputation/domain
func (c *Controller) CheckDomain(w http.ResponseWriter, r *http.Request) {
	c.lookup(w, r, "reputation.domain", c.service.CheckDomain)
}

// CheckIP handles POST /v1/reputation/ip
func (c *Controller) CheckIP(w http.ResponseWriter, r *http.Request) {
	c.lookup(w, r, "reputation.ip", c.service.CheckIP)
}

// lookup es el cuerpo común de ambos endpoints: solo cambia la operación.
func (c *Controller) lookup(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(ctx context.Context, apiKey, entry string) (*svc.LookupResult, error),
) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op(op))

	var req dto.LookupRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := fn(ctx, req.APIKey, req.Entry)
	if err != nil {
		log.Info("lookup failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LookupResponse{
		Success:   true,
		Malicious: result.Malicious,
	})
}

// ValidateKey handles POST /v1/reputation/validate-key
func (c *Controller) ValidateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("reputation.validate_key"))

	var req dto.ValidateKeyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.service.ValidateKey(ctx, req.APIKey); err != nil {
		log.Info("key validation failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ValidateKeyResponse{
		Success: true,
		Data:    dto.ValidateKeyData{Valid: true},
	})
}
