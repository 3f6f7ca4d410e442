// Package mfa contains the controllers for the MFA enrollment flow.
package mfa

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/trustgate/internal/http/dto/mfa"
	httperrors "github.com/dropDatabas3/trustgate/internal/http/errors"
	"github.com/dropDatabas3/trustgate/internal/http/helpers"
	"github.com/dropDatabas3/trustgate/internal/mfa"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
)

// Controller handles the MFA enrollment endpoints.
type Controller struct {
	orch *mfa.Orchestrator
}

// NewController creates the controller.
func NewController(o *mfa.Orchestrator) *Controller {
	return &Controller{orch: o}
}

// mapError traduce los sentinels del orquestador al taxonomía HTTP.
// Los errores de provider ya vienen como AppError y pasan directo.
func mapError(err error) error {
	switch {
	case errors.Is(err, mfa.ErrSessionNotFound):
		return httperrors.ErrNotFound.WithMessage("la sesión de enrolamiento no existe o expiró")
	case errors.Is(err, mfa.ErrBusy):
		return httperrors.ErrBusy
	case errors.Is(err, mfa.ErrAlreadyEnrolled):
		return httperrors.ErrBusy.
			WithStatus(http.StatusConflict).
			WithMessage("el enrolamiento ya fue completado")
	case errors.Is(err, mfa.ErrBadState):
		return httperrors.ErrMissingFields.
			WithStatus(http.StatusConflict).
			WithMessage("la operación no es válida para el estado actual de la sesión")
	case errors.Is(err, mfa.ErrMissingVerification):
		return httperrors.ErrMissingFields.
			WithMessage("no hay verificación telefónica pendiente para confirmar")
	case errors.Is(err, mfa.ErrMissingInput):
		return httperrors.ErrMissingFields
	case errors.Is(err, mfa.ErrVerificationFailed):
		return httperrors.ErrUpstream.
			WithMessage("la verificación telefónica falló, puede reintentar")
	case errors.Is(err, mfa.ErrCodeRejected):
		return httperrors.ErrInvalidCredential.
			WithStatus(http.StatusBadRequest).
			WithMessage("el código de confirmación fue rechazado")
	default:
		return err
	}
}

func toResponse(v mfa.View) dto.SessionResponse {
	resp := dto.SessionResponse{
		Success:             true,
		SessionID:           v.ID,
		State:               string(v.State),
		PhoneNumber:         v.PhoneNumber,
		PendingVerification: v.HasPending,
		Failure:             v.Failure,
	}
	if !v.EnrolledAt.IsZero() {
		resp.EnrolledAt = v.EnrolledAt.Unix()
	}
	return resp
}

// Start handles POST /v1/mfa/start
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("mfa.start"))

	var req dto.StartRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	view, err := c.orch.Start(ctx, req.UserRef)
	if err != nil {
		log.Info("mfa start failed", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(view))
}

// SubmitPhone handles POST /v1/mfa/phone
func (c *Controller) SubmitPhone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("mfa.phone"))

	var req dto.PhoneRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	view, err := c.orch.SubmitPhone(ctx, req.SessionID, req.PhoneNumber)
	if err != nil {
		log.Info("mfa phone failed", logger.SessionID(req.SessionID), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(view))
}

// ConfirmCode handles POST /v1/mfa/confirm
func (c *Controller) ConfirmCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("mfa.confirm"))

	var req dto.ConfirmRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	view, err := c.orch.ConfirmCode(ctx, req.SessionID, req.Code)
	if err != nil {
		log.Info("mfa confirm failed", logger.SessionID(req.SessionID), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(view))
}

// Retry handles POST /v1/mfa/retry
func (c *Controller) Retry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("mfa.retry"))

	var req dto.SessionRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	view, err := c.orch.Retry(ctx, req.SessionID)
	if err != nil {
		log.Info("mfa retry failed", logger.SessionID(req.SessionID), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(view))
}

// Abandon handles POST /v1/mfa/abandon
func (c *Controller) Abandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("mfa.abandon"))

	var req dto.SessionRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	if err := c.orch.Abandon(ctx, req.SessionID); err != nil {
		log.Info("mfa abandon failed", logger.SessionID(req.SessionID), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
