package mfa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeChallenges cuenta creaciones y liberaciones.
type fakeChallenges struct {
	mu       sync.Mutex
	created  int
	released []string
	fail     bool
}

func (f *fakeChallenges) Create(ctx context.Context) (*ChallengeHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("challenge provider down")
	}
	f.created++
	return &ChallengeHandle{ID: fmt.Sprintf("ch-%d", f.created), Token: "tok"}, nil
}

func (f *fakeChallenges) Release(h *ChallengeHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, h.ID)
}

func (f *fakeChallenges) releasedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.released)
}

// fakeIdentity simula el identity provider federado.
type fakeIdentity struct {
	mu             sync.Mutex
	verifyErr      error
	confirmErr     error
	verificationID string
	gotVerifyID    string
	gotCode        string
	gotToken       string
	confirmCalls   int
	verifyCalls    int
}

func (f *fakeIdentity) StartPhoneVerification(_ context.Context, _, _, challengeToken string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	f.gotToken = challengeToken
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	if f.verificationID == "" {
		f.verificationID = "verif-001"
	}
	return f.verificationID, nil
}

func (f *fakeIdentity) ConfirmEnrollment(_ context.Context, _, verificationID, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmCalls++
	f.gotVerifyID = verificationID
	f.gotCode = code
	return f.confirmErr
}

func newTestOrchestrator(cp *fakeChallenges, ip *fakeIdentity) *Orchestrator {
	return NewOrchestrator(time.Minute, cp, ip)
}

func TestFullEnrollmentFlow(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, err := o.Start(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, StateChallengeReady, v.State)
	require.Equal(t, 1, cp.created)

	v, err = o.SubmitPhone(ctx, v.ID, "+5491100000000")
	require.NoError(t, err)
	require.Equal(t, StateCodeSent, v.State)
	require.Equal(t, "tok", ip.gotToken)

	v, err = o.ConfirmCode(ctx, v.ID, "123456")
	require.NoError(t, err)
	require.Equal(t, StateEnrolled, v.State)

	// El verificationId vuelve textual, tal cual lo entregó el provider.
	require.Equal(t, "verif-001", ip.gotVerifyID)
	require.Equal(t, "123456", ip.gotCode)

	// El challenge se libera al completar.
	require.Equal(t, 1, cp.releasedCount())
}

func TestConfirmWithoutVerification_NeverCallsProvider(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, err := o.Start(ctx, "user-1")
	require.NoError(t, err)

	// Confirmar sin haber pasado por SubmitPhone: estado incorrecto, y el
	// provider jamás recibe la llamada.
	_, err = o.ConfirmCode(ctx, v.ID, "123456")
	require.ErrorIs(t, err, ErrBadState)
	require.Zero(t, ip.confirmCalls)
}

func TestEnrolledIsTerminal(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, _ := o.Start(ctx, "user-1")
	_, _ = o.SubmitPhone(ctx, v.ID, "+549110000")
	_, err := o.ConfirmCode(ctx, v.ID, "123456")
	require.NoError(t, err)

	// Ninguna transición sale de Enrolled; no hay doble enrolamiento.
	_, err = o.ConfirmCode(ctx, v.ID, "123456")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.Equal(t, 1, ip.confirmCalls)

	_, err = o.SubmitPhone(ctx, v.ID, "+549110000")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = o.Retry(ctx, v.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestVerificationFailureKeepsChallengeForRetry(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{verifyErr: errors.New("sms gateway timeout")}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, _ := o.Start(ctx, "user-1")
	_, err := o.SubmitPhone(ctx, v.ID, "+549110000")
	require.ErrorIs(t, err, ErrVerificationFailed)

	snap, err := o.Snapshot(v.ID)
	require.NoError(t, err)
	require.Equal(t, StateFailed, snap.State)

	// El challenge sobrevive al fallo: Retry lo reutiliza sin crear otro.
	ip.verifyErr = nil
	snap, err = o.Retry(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, StateChallengeReady, snap.State)
	require.Equal(t, 1, cp.created)
	require.Zero(t, cp.releasedCount())

	snap, err = o.SubmitPhone(ctx, v.ID, "+549110000")
	require.NoError(t, err)
	require.Equal(t, StateCodeSent, snap.State)
}

func TestCodeRejectionStaysInCodeSent(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{confirmErr: errors.New("wrong code")}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, _ := o.Start(ctx, "user-1")
	_, _ = o.SubmitPhone(ctx, v.ID, "+549110000")

	_, err := o.ConfirmCode(ctx, v.ID, "000000")
	require.ErrorIs(t, err, ErrCodeRejected)

	// El código estaba mal, no la verificación: se puede reintentar con el
	// mismo verificationId.
	snap, _ := o.Snapshot(v.ID)
	require.Equal(t, StateCodeSent, snap.State)

	ip.confirmErr = nil
	snap, err = o.ConfirmCode(ctx, v.ID, "123456")
	require.NoError(t, err)
	require.Equal(t, StateEnrolled, snap.State)
	require.Equal(t, "verif-001", ip.gotVerifyID)
}

func TestAbandonReleasesChallenge(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, _ := o.Start(ctx, "user-1")
	require.NoError(t, o.Abandon(ctx, v.ID))

	require.Equal(t, 1, cp.releasedCount())
	_, err := o.Snapshot(v.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAbandonDoesNotDoubleRelease(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, _ := o.Start(ctx, "user-1")
	require.NoError(t, o.Abandon(ctx, v.ID))

	// Abandon hace Delete, que dispara el hook de evicción sobre la misma
	// sesión: el handle debe liberarse exactamente una vez.
	require.Equal(t, 1, cp.releasedCount())
}

func TestExpiryReleasesChallenge(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := NewOrchestrator(30*time.Millisecond, cp, ip)
	ctx := context.Background()

	v, err := o.Start(ctx, "user-1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return cp.releasedCount() == 1
	}, 3*time.Second, 20*time.Millisecond, "expired session must release its challenge")

	_, err = o.Snapshot(v.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentTransitionGetsBusy(t *testing.T) {
	cp := &fakeChallenges{}
	ip := &fakeIdentity{}
	o := newTestOrchestrator(cp, ip)
	ctx := context.Background()

	v, _ := o.Start(ctx, "user-1")

	s, err := o.get(v.ID)
	require.NoError(t, err)

	// Simula una transición en vuelo tomando el lock de la sesión.
	require.True(t, s.tryAcquire())
	defer s.release()

	_, err = o.SubmitPhone(ctx, v.ID, "+549110000")
	require.ErrorIs(t, err, ErrBusy)

	_, err = o.ConfirmCode(ctx, v.ID, "123456")
	require.ErrorIs(t, err, ErrBusy)

	err = o.Abandon(ctx, v.ID)
	require.ErrorIs(t, err, ErrBusy)
}

func TestStartRequiresUserRef(t *testing.T) {
	cp := &fakeChallenges{}
	o := newTestOrchestrator(cp, &fakeIdentity{})

	_, err := o.Start(context.Background(), "   ")
	require.ErrorIs(t, err, ErrMissingInput)
	require.Zero(t, cp.created)
}

func TestStartPropagatesChallengeFailure(t *testing.T) {
	cp := &fakeChallenges{fail: true}
	o := newTestOrchestrator(cp, &fakeIdentity{})

	_, err := o.Start(context.Background(), "user-1")
	require.Error(t, err)
}

func TestSubmitPhoneUnknownSession(t *testing.T) {
	o := newTestOrchestrator(&fakeChallenges{}, &fakeIdentity{})

	_, err := o.SubmitPhone(context.Background(), "nope", "+549110000")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
