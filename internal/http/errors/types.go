package errors

import (
	"fmt"
	"net/http"
)

// Kind clasifica los errores del gateway. Cada kind tiene un status HTTP
// por defecto; los handlers pueden ajustar el status (ej: passthrough del
// status del provider) sin cambiar el kind.
type Kind string

const (
	// KindInvalidInput: campos faltantes o malformados del caller. Siempre
	// pre-red: nunca se hace una llamada saliente con input inválido.
	KindInvalidInput Kind = "invalid_input"

	// KindInvalidCredential: el provider rechazó la credencial del caller.
	KindInvalidCredential Kind = "invalid_credential"

	// KindUnauthenticated: falta o es inválido el bearer token entrante.
	KindUnauthenticated Kind = "unauthenticated"

	// KindForbidden: el provider rechazó el acceso con el token dado.
	KindForbidden Kind = "forbidden"

	// KindNotFound: recurso inexistente upstream.
	KindNotFound Kind = "not_found"

	// KindUpstreamError: el provider devolvió un non-2xx inesperado.
	KindUpstreamError Kind = "upstream_error"

	// KindUpstreamProtocol: el provider devolvió 2xx pero violó su contrato
	// documentado (ej: 2xx sin token).
	KindUpstreamProtocol Kind = "upstream_protocol"

	// KindConfiguration: falta un setting requerido del proceso. Degrada el
	// request a 500; nunca se presenta como fallo de autenticación.
	KindConfiguration Kind = "configuration"

	// KindBusy: segunda transición MFA concurrente para la misma sesión.
	KindBusy Kind = "busy"

	// KindInternal: fallback para errores no clasificados.
	KindInternal Kind = "internal"
)

// defaultStatus retorna el status HTTP por defecto para un kind.
func defaultStatus(k Kind) int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindInvalidCredential, KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamError, KindUpstreamProtocol:
		return http.StatusBadGateway
	case KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError define la estructura estándar para errores del gateway.
type AppError struct {
	Kind       Kind   `json:"kind"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente
}

// Error implementa la interfaz error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError con el status por defecto del kind.
func New(kind Kind, code, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: defaultStatus(kind),
	}
}

// WithStatus devuelve una COPIA con el status HTTP ajustado.
// Usado para passthrough del status del provider (ej: relay 401/403).
func (e *AppError) WithStatus(status int) *AppError {
	newErr := *e
	newErr.HTTPStatus = status
	return &newErr
}

// WithDetail agrega detalles adicionales al error (útil para validaciones).
// Devuelve una COPIA del error para no mutar las variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithMessage devuelve una COPIA con otro mensaje user-facing.
func (e *AppError) WithMessage(message string) *AppError {
	newErr := *e
	newErr.Message = message
	return &newErr
}

// WithCause agrega el error original (causa).
// Devuelve una COPIA del error.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// IsKind reporta si err es un *AppError del kind dado.
func IsKind(err error, kind Kind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la causa.
// Nada llega a la capa de transporte sin pasar por acá.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	// ---- invalid_input ----

	ErrInvalidJSON = &AppError{
		Kind:       KindInvalidInput,
		Code:       "INVALID_JSON",
		Message:    "el cuerpo de la solicitud no es un JSON válido",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Kind:       KindInvalidInput,
		Code:       "MISSING_FIELDS",
		Message:    "faltan campos requeridos en la solicitud",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrMissingLookupFields: los endpoints de reputación responden 500 ante
	// campos faltantes, por contrato histórico con el dashboard.
	ErrMissingLookupFields = &AppError{
		Kind:       KindInvalidInput,
		Code:       "MISSING_FIELDS",
		Message:    "faltan campos requeridos en la solicitud",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ---- credenciales ----

	ErrInvalidCredential = &AppError{
		Kind:       KindInvalidCredential,
		Code:       "INVALID_CREDENTIALS",
		Message:    "las credenciales proporcionadas son inválidas",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Kind:       KindUnauthenticated,
		Code:       "TOKEN_MISSING",
		Message:    "no se proporcionó token de autenticación",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrUnauthenticated = &AppError{
		Kind:       KindUnauthenticated,
		Code:       "UNAUTHORIZED",
		Message:    "no autorizado, se requiere autenticación",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Kind:       KindForbidden,
		Code:       "FORBIDDEN",
		Message:    "no tiene permisos para acceder a este recurso",
		HTTPStatus: http.StatusForbidden,
	}

	// ---- upstream ----

	ErrNotFound = &AppError{
		Kind:       KindNotFound,
		Code:       "NOT_FOUND",
		Message:    "el recurso solicitado no fue encontrado",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUpstream = &AppError{
		Kind:       KindUpstreamError,
		Code:       "UPSTREAM_ERROR",
		Message:    "el provider externo devolvió un error inesperado",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrUpstreamProtocol = &AppError{
		Kind:       KindUpstreamProtocol,
		Code:       "UPSTREAM_PROTOCOL",
		Message:    "el provider externo violó su contrato de respuesta",
		HTTPStatus: http.StatusBadGateway,
	}

	// ---- proceso ----

	ErrConfiguration = &AppError{
		Kind:       KindConfiguration,
		Code:       "CONFIGURATION",
		Message:    "falta configuración requerida del servicio",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrBusy = &AppError{
		Kind:       KindBusy,
		Code:       "BUSY",
		Message:    "hay otra operación en curso para esta sesión",
		HTTPStatus: http.StatusConflict,
	}

	ErrRateLimited = &AppError{
		Kind:       KindBusy,
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "ha excedido el límite de solicitudes, intente más tarde",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternal = &AppError{
		Kind:       KindInternal,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "ocurrió un error interno en el servidor",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrMethodNotAllowed = &AppError{
		Kind:       KindInvalidInput,
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "el método HTTP no está permitido para este recurso",
		HTTPStatus: http.StatusMethodNotAllowed,
	}
)
