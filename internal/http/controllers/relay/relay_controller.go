// Package relay contains the protected resource relay controller.
package relay

import (
	"net/http"

	dto "github.com/dropDatabas3/trustgate/internal/http/dto/relay"
	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/http/helpers"
	svc "github.com/dropDatabas3/trustgate/internal/http/services/relay"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// Controller handles the artifact download relay.
type Controller struct {
	service svc.Service
}

// NewController creates the controller.
func NewController(s svc.Service) *Controller {
	return &Controller{service: s}
}

// Location handles GET /v1/artifacts/{version}/{name}
//
// El bearer viaja en el header Authorization, nunca en la URL. La
// respuesta entrega la download location firmada tal cual la dio el
// partner, sin interpretarla.
func (c *Controller) Location(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("relay.location"))

	token := helpers.BearerToken(r)
	version := chi.URLParam(r, "version")
	name := chi.URLParam(r, "name")

	loc, err := c.service.FetchDownloadLocation(ctx, token, version, name)
	if err != nil {
		log.Info("relay failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LocationResponse{
		Success:     true,
		DownloadURL: loc,
	})
}
