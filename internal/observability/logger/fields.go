package logger

import (
	"time"

	"github.com/dropDatabas3/trustgate/internal/util"
	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - GATEWAY
// =================================================================================

// Provider crea un campo para el provider externo consultado.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// UpstreamStatus crea un campo para el status code del provider.
func UpstreamStatus(v int) zap.Field {
	return zap.Int("upstream_status", v)
}

// SessionID crea un campo para el ID de sesión MFA.
func SessionID(v string) zap.Field {
	return zap.String("session_id", v)
}

// MFAState crea un campo para el estado de la máquina MFA.
func MFAState(v string) zap.Field {
	return zap.String("mfa_state", v)
}

// UserRef crea un campo para la referencia de usuario.
func UserRef(v string) zap.Field {
	return zap.String("user_ref", v)
}

// Secret crea un campo para una credencial, SIEMPRE enmascarada.
// Nunca loguear API keys, passwords o bearer tokens sin pasar por aquí.
func Secret(key, v string) zap.Field {
	return zap.String(key, util.MaskSecret(v))
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, provider).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// CAMPOS GENÉRICOS
// =================================================================================

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
