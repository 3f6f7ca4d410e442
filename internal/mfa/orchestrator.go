package mfa

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/trustgate/internal/metrics"
	"github.com/dropDatabas3/trustgate/internal/observability/logger"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Orchestrator coordina las sesiones de enrolamiento MFA.
//
// Cada sesión vive en un store en memoria con TTL; el hook de evicción
// libera el challenge handle, de modo que expiración, abandono y éxito
// comparten el mismo camino de teardown.
type Orchestrator struct {
	sessions   *gocache.Cache
	challenges ChallengeProvider
	identity   IdentityProvider
}

// NewOrchestrator crea el orquestador con el TTL de sesión dado.
func NewOrchestrator(sessionTTL time.Duration, cp ChallengeProvider, ip IdentityProvider) *Orchestrator {
	if sessionTTL <= 0 {
		sessionTTL = 15 * time.Minute
	}
	// El hook de evicción corre en el janitor: su intervalo acota cuánto
	// puede vivir un challenge huérfano después de expirar la sesión.
	cleanup := sessionTTL / 2
	if cleanup > time.Minute {
		cleanup = time.Minute
	}
	store := gocache.New(sessionTTL, cleanup)

	o := &Orchestrator{
		sessions:   store,
		challenges: cp,
		identity:   ip,
	}

	// Teardown centralizado: cualquier salida de la sesión (Delete o
	// expiración por TTL) pasa por acá. takeChallenge es idempotente, así
	// que los caminos que ya liberaron el handle no lo liberan dos veces.
	store.OnEvicted(func(_ string, v any) {
		s, ok := v.(*Session)
		if !ok {
			return
		}
		s.mu.Lock()
		h := s.takeChallenge()
		s.mu.Unlock()
		if h != nil {
			o.challenges.Release(h)
			logger.L().Debug("challenge released on session eviction",
				logger.Component("mfa"),
				logger.SessionID(s.ID),
			)
		}
	})

	return o
}

// get busca la sesión o falla con ErrSessionNotFound.
func (o *Orchestrator) get(sessionID string) (*Session, error) {
	v, ok := o.sessions.Get(strings.TrimSpace(sessionID))
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func transition(s *Session, to State) {
	metrics.MFATransitions.WithLabelValues(string(s.state), string(to)).Inc()
	s.state = to
}

// Start crea una sesión nueva para userRef e instancia su challenge.
// Idle → ChallengeReady.
func (o *Orchestrator) Start(ctx context.Context, userRef string) (View, error) {
	userRef = strings.TrimSpace(userRef)
	if userRef == "" {
		return View{}, ErrMissingInput
	}

	handle, err := o.challenges.Create(ctx)
	if err != nil {
		return View{}, err
	}

	s := &Session{
		ID:        uuid.NewString(),
		UserRef:   userRef,
		state:     StateIdle,
		challenge: handle,
	}

	s.mu.Lock()
	transition(s, StateChallengeReady)
	v := s.view()
	s.mu.Unlock()

	o.sessions.SetDefault(s.ID, s)

	logger.From(ctx).Info("mfa session started",
		logger.Component("mfa"),
		logger.SessionID(s.ID),
		logger.UserRef(userRef),
	)
	return v, nil
}

// SubmitPhone dispara la verificación telefónica.
// ChallengeReady → CodeSent; en fallo del provider → Failed (el challenge
// se conserva para Retry).
func (o *Orchestrator) SubmitPhone(ctx context.Context, sessionID, phoneNumber string) (View, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return View{}, ErrMissingInput
	}

	s, err := o.get(sessionID)
	if err != nil {
		return View{}, err
	}
	if !s.tryAcquire() {
		return View{}, ErrBusy
	}
	defer s.release()

	if s.state == StateEnrolled {
		return s.view(), ErrAlreadyEnrolled
	}
	if s.state != StateChallengeReady {
		return s.view(), ErrBadState
	}
	if s.challenge == nil {
		// No debería pasar: ChallengeReady implica handle vivo.
		return s.view(), ErrBadState
	}

	verificationID, err := o.identity.StartPhoneVerification(ctx, s.UserRef, phoneNumber, s.challenge.Token)
	if err != nil {
		// El challenge NO se destruye: el mismo widget sirve para un
		// reintento (política de reuso, ver DESIGN.md).
		transition(s, StateFailed)
		s.failure = ErrVerificationFailed.Error()
		logger.From(ctx).Warn("phone verification failed",
			logger.Component("mfa"),
			logger.SessionID(s.ID),
			logger.Err(err),
		)
		return s.view(), ErrVerificationFailed
	}

	s.phoneNumber = phoneNumber
	s.verificationID = verificationID
	s.failure = ""
	transition(s, StateCodeSent)

	logger.From(ctx).Info("phone verification sent",
		logger.Component("mfa"),
		logger.SessionID(s.ID),
	)
	return s.view(), nil
}

// ConfirmCode completa el enrolamiento con el código recibido por SMS.
// CodeSent → Enrolled; en rechazo del código la sesión QUEDA en CodeSent:
// lo incorrecto fue el código, no la verificación, y el verificationId
// sigue siendo válido para reintentar.
func (o *Orchestrator) ConfirmCode(ctx context.Context, sessionID, code string) (View, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return View{}, ErrMissingInput
	}

	s, err := o.get(sessionID)
	if err != nil {
		return View{}, err
	}
	if !s.tryAcquire() {
		return View{}, ErrBusy
	}
	defer s.release()

	if s.state == StateEnrolled {
		// Terminal: jamás doble enrolamiento.
		return s.view(), ErrAlreadyEnrolled
	}
	if s.state != StateCodeSent {
		return s.view(), ErrBadState
	}
	if s.verificationID == "" {
		// Pre-red: sin verificationId no se contacta al provider.
		return s.view(), ErrMissingVerification
	}

	if err := o.identity.ConfirmEnrollment(ctx, s.UserRef, s.verificationID, code); err != nil {
		logger.From(ctx).Warn("enrollment code rejected",
			logger.Component("mfa"),
			logger.SessionID(s.ID),
			logger.Err(err),
		)
		return s.view(), ErrCodeRejected
	}

	s.enrolledAt = time.Now().UTC()
	transition(s, StateEnrolled)

	// Éxito: la sesión terminó, el handle se libera ya. La sesión queda en
	// el store hasta su TTL para que confirmaciones repetidas reciban
	// ErrAlreadyEnrolled en vez de un 404 confuso.
	h := s.takeChallenge()
	if h != nil {
		o.challenges.Release(h)
	}

	logger.From(ctx).Info("mfa enrollment completed",
		logger.Component("mfa"),
		logger.SessionID(s.ID),
		logger.UserRef(s.UserRef),
	)
	return s.view(), nil
}

// Retry vuelve de Failed a ChallengeReady reutilizando el challenge vivo.
// Si el handle ya no existe (no debería), se crea uno nuevo.
func (o *Orchestrator) Retry(ctx context.Context, sessionID string) (View, error) {
	s, err := o.get(sessionID)
	if err != nil {
		return View{}, err
	}
	if !s.tryAcquire() {
		return View{}, ErrBusy
	}
	defer s.release()

	if s.state == StateEnrolled {
		return s.view(), ErrAlreadyEnrolled
	}
	if s.state != StateFailed {
		return s.view(), ErrBadState
	}

	if s.challenge == nil {
		handle, err := o.challenges.Create(ctx)
		if err != nil {
			return s.view(), err
		}
		s.challenge = handle
		s.released = false
	}

	s.failure = ""
	transition(s, StateChallengeReady)
	return s.view(), nil
}

// Abandon termina la sesión en cualquier estado, liberando el challenge.
func (o *Orchestrator) Abandon(ctx context.Context, sessionID string) error {
	s, err := o.get(sessionID)
	if err != nil {
		return err
	}
	if !s.tryAcquire() {
		return ErrBusy
	}

	h := s.takeChallenge()
	s.release()

	if h != nil {
		o.challenges.Release(h)
	}

	// El hook de evicción corre en Delete pero takeChallenge ya fue
	// consumido, así que no hay doble liberación.
	o.sessions.Delete(strings.TrimSpace(sessionID))

	logger.From(ctx).Info("mfa session abandoned",
		logger.Component("mfa"),
		logger.SessionID(sessionID),
	)
	return nil
}

// Snapshot retorna la vista actual de la sesión sin transicionar.
func (o *Orchestrator) Snapshot(sessionID string) (View, error) {
	s, err := o.get(sessionID)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}
