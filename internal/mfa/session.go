package mfa

import (
	"sync"
	"time"
)

// State es el estado de una sesión de enrolamiento.
type State string

const (
	StateIdle           State = "idle"
	StateChallengeReady State = "challenge_ready"
	StateCodeSent       State = "code_sent"
	StateEnrolled       State = "enrolled"
	StateFailed         State = "failed"
)

// Session es el estado de enrolamiento de UN usuario. Vive en memoria, es
// privada de la sesión de usuario que la creó y no se comparte entre tabs
// ni dispositivos. El provider mantiene el estado de enrolamiento de
// registro; esto es solo coordinación.
type Session struct {
	ID      string
	UserRef string

	// mu serializa transiciones: TryLock fallido == transición concurrente.
	mu sync.Mutex

	state          State
	phoneNumber    string
	verificationID string // opaco, round-trip textual al provider
	enrolledAt     time.Time
	failure        string // mensaje user-facing del último fallo

	// challenge es propiedad exclusiva de la sesión; se libera al salir.
	challenge *ChallengeHandle
	released  bool
}

// View es una vista inmutable de la sesión para respuestas HTTP.
type View struct {
	ID          string
	UserRef     string
	State       State
	PhoneNumber string
	HasPending  bool // hay verificationId almacenado
	Failure     string
	EnrolledAt  time.Time
}

// view arma la vista. Caller debe tener el lock.
func (s *Session) view() View {
	return View{
		ID:          s.ID,
		UserRef:     s.UserRef,
		State:       s.state,
		PhoneNumber: s.phoneNumber,
		HasPending:  s.verificationID != "",
		Failure:     s.failure,
		EnrolledAt:  s.enrolledAt,
	}
}

// tryAcquire toma el lock de transición sin bloquear.
// Retorna false si hay otra transición en vuelo.
func (s *Session) tryAcquire() bool {
	return s.mu.TryLock()
}

func (s *Session) release() {
	s.mu.Unlock()
}

// takeChallenge entrega el handle y marca la sesión como liberada, de forma
// que una segunda liberación (ej: evicción después de Abandon) sea no-op.
// Caller debe tener el lock o garantía de exclusividad (hook de evicción).
func (s *Session) takeChallenge() *ChallengeHandle {
	if s.released {
		return nil
	}
	s.released = true
	h := s.challenge
	s.challenge = nil
	return h
}
