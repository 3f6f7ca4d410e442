package mfa

import "errors"

var (
	// ErrSessionNotFound: la sesión no existe o ya expiró.
	ErrSessionNotFound = errors.New("mfa: sesión no encontrada")

	// ErrBusy: hay otra transición en vuelo para la misma sesión.
	ErrBusy = errors.New("mfa: otra operación en curso para esta sesión")

	// ErrBadState: la transición pedida no es válida desde el estado actual.
	ErrBadState = errors.New("mfa: transición inválida para el estado actual")

	// ErrAlreadyEnrolled: la sesión ya está enrolada (estado terminal).
	ErrAlreadyEnrolled = errors.New("mfa: el enrolamiento ya fue completado")

	// ErrMissingVerification: se intentó confirmar un código sin
	// verificationId almacenado. Se rechaza sin contactar al provider.
	ErrMissingVerification = errors.New("mfa: no hay verificación telefónica pendiente")

	// ErrMissingInput: userRef, teléfono o código vacíos.
	ErrMissingInput = errors.New("mfa: faltan campos requeridos")

	// ErrVerificationFailed: el provider rechazó la verificación telefónica.
	ErrVerificationFailed = errors.New("mfa: la verificación telefónica falló")

	// ErrCodeRejected: el provider rechazó el código de confirmación.
	// La sesión queda en CodeSent: el código estaba mal, no la verificación.
	ErrCodeRejected = errors.New("mfa: código de confirmación rechazado")
)
