// Package partner contains the credential exchange controller.
package partner

import (
	"net/http"

	dto "github.com/dropDatabas3/trustgate/internal/http/dto/partner"
	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/http/helpers"
	svc "github.com/dropDatabas3/trustgate/internal/http/services/partner"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// Controller handles the partner token exchange.
type Controller struct {
	service svc.Service
}

// NewController creates the controller.
func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// Exchange handles POST /v1/partner/token
func (c *Controller) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("partner.exchange"))

	var req dto.ExchangeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	result, err := c.service.Exchange(ctx, req.Username, req.Password)
	if err != nil {
		log.Info("exchange failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	// Exp en Unix seconds, 0 si el partner no informó expiración.
	var exp int64
	if !result.Expiry.IsZero() {
		exp = result.Expiry.Unix()
	}

	helpers.WriteJSON(w, http.StatusOK, dto.ExchangeResponse{
		Success: true,
		Token:   result.Token,
		Exp:     exp,
	})
}
