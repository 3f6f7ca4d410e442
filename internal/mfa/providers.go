package mfa

import "context"

// ChallengeHandle representa un challenge widget vivo, emitido por el
// challenge provider y propiedad exclusiva de una sesión de enrolamiento.
type ChallengeHandle struct {
	// ID identifica el challenge ante el provider (para liberarlo).
	ID string
	// Token es la prueba que el identity provider exige junto con la
	// solicitud de verificación telefónica.
	Token string
}

// ChallengeProvider crea y libera challenge handles.
type ChallengeProvider interface {
	// Create instancia un challenge invisible y retorna su handle.
	Create(ctx context.Context) (*ChallengeHandle, error)

	// Release destruye el challenge. Debe ser idempotente y best-effort:
	// se invoca desde hooks de evicción donde no hay a quién reportar.
	Release(handle *ChallengeHandle)
}

// IdentityProvider es el provider federado que ejecuta la verificación
// telefónica y completa el enrolamiento.
type IdentityProvider interface {
	// StartPhoneVerification pide el envío del código SMS. Retorna el
	// verificationId del provider: un token de correlación opaco que debe
	// volver textual en ConfirmEnrollment.
	StartPhoneVerification(ctx context.Context, userRef, phoneNumber, challengeToken string) (string, error)

	// ConfirmEnrollment envía el código de confirmación junto con el
	// verificationId para completar el enrolamiento.
	ConfirmEnrollment(ctx context.Context, userRef, verificationID, code string) error
}
