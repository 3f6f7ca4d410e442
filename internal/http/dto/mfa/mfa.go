// Package mfa contiene los DTOs del flujo de enrolamiento MFA.
package mfa

// StartRequest es el body de POST /v1/mfa/start.
type StartRequest struct {
	UserRef string `json:"userRef"`
}

// PhoneRequest es el body de POST /v1/mfa/phone.
type PhoneRequest struct {
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
}

// ConfirmRequest es el body de POST /v1/mfa/confirm.
type ConfirmRequest struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

// SessionRequest es el body de POST /v1/mfa/{retry,abandon}.
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

// SessionResponse es la vista de la sesión que viaja al dashboard.
// No expone el challenge handle ni el verificationId: ambos son
// server-side; el dashboard solo necesita saber si hay verificación
// pendiente.
type SessionResponse struct {
	Success             bool   `json:"success"`
	SessionID           string `json:"sessionId"`
	State               string `json:"state"`
	PhoneNumber         string `json:"phoneNumber,omitempty"`
	PendingVerification bool   `json:"pendingVerification"`
	Failure             string `json:"failure,omitempty"`
	EnrolledAt          int64  `json:"enrolledAt,omitempty"`
}
