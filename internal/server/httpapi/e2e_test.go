package httpapi_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/client"
	"github.com/dmitrijs2005/adminauth/internal/client/credentials"
	"github.com/dmitrijs2005/adminauth/internal/client/models"
	"github.com/dmitrijs2005/adminauth/internal/client/repositories/metadata"
	clientsvc "github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/dmitrijs2005/adminauth/internal/logging"
	"github.com/dmitrijs2005/adminauth/internal/server/config"
	"github.com/dmitrijs2005/adminauth/internal/server/httpapi"
	"github.com/dmitrijs2005/adminauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/adminauth/internal/server/services"
	"github.com/dmitrijs2005/adminauth/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stack struct {
	auth        clientsvc.AuthService
	flow        *clientsvc.OTPFlow
	store       *credentials.Store
	clientClock *timex.ManualClock
	serverClock *timex.ManualClock

	mu    sync.Mutex
	codes map[string]string
}

func (s *stack) code(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	st := &stack{
		clientClock: timex.NewManualClock(start),
		serverClock: timex.NewManualClock(start),
		codes:       map[string]string{},
	}

	m := repomanager.NewSQLiteRepositoryManager()
	db, err := repomanager.Open(ctx, m, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	us := services.NewUserService(db, m, cfg,
		services.WithClock(st.serverClock),
		services.WithOTPSink(func(email, code string) {
			st.mu.Lock()
			st.codes[email] = code
			st.mu.Unlock()
		}),
	)
	require.NoError(t, us.Seed(ctx, "admin@example.com", "Admin123!", "Admin"))

	srv := httptest.NewServer(httpapi.NewHTTPServer("", logging.NopLogger{}, us).Router())
	t.Cleanup(srv.Close)

	gw := client.NewHTTPClient(srv.URL, client.WithTimeout(5*time.Second))
	st.store = credentials.New(metadata.NewMemoryRepository())
	st.auth = clientsvc.NewAuthService(gw, st.store, clientsvc.WithClock(st.clientClock))
	gw.SetTokenSource(st.auth.Token)
	gw.OnUnauthorized(st.auth.HandleSessionExpired)
	st.flow = clientsvc.NewOTPFlow(st.auth, st.store, st.clientClock, nil)

	require.NoError(t, st.auth.Initialize(ctx))
	return st
}

func TestEndToEnd_LoginLogout(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	user, err := st.auth.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	assert.Equal(t, "Admin", user.Name)
	assert.Equal(t, models.Authenticated, st.auth.State())

	rec, err := st.store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.HasSession())

	require.NoError(t, st.auth.Logout(ctx))
	assert.Equal(t, models.Unauthenticated, st.auth.State())
	rec, err = st.store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, rec.HasSession())
}

func TestEndToEnd_LockoutAfterRepeatedFailures(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	for i := 1; i < 5; i++ {
		_, err := st.auth.Login(ctx, "admin@example.com", "wrong")
		var failed *clientsvc.LoginFailedError
		require.True(t, errors.As(err, &failed), "attempt %d: %v", i, err)
		assert.Equal(t, 5-i, failed.Remaining)
		assert.Equal(t, "Invalid email or password", client.MessageOf(failed.Err))
	}

	_, err := st.auth.Login(ctx, "admin@example.com", "wrong")
	var locked *clientsvc.LockoutError
	require.True(t, errors.As(err, &locked))
	assert.True(t, locked.JustLocked)
	assert.True(t, st.auth.IsLockedOut(ctx))

	_, err = st.auth.Login(ctx, "admin@example.com", "Admin123!")
	require.True(t, errors.As(err, &locked), "correct password is refused while locked")
	assert.False(t, locked.JustLocked)

	st.clientClock.Advance(2 * time.Minute)
	_, err = st.auth.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)
	assert.Zero(t, st.auth.LoginAttempts())
}

func TestEndToEnd_PasswordReset(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	require.NoError(t, st.auth.ForgotPassword(ctx, "admin@example.com"))
	_, err := st.flow.Begin(ctx, "admin@example.com")
	require.NoError(t, err)

	code := st.code("admin@example.com")
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = st.flow.Verify(ctx, wrong)
	assert.Equal(t, "Invalid or expired OTP", client.MessageOf(err))

	ticket, err := st.flow.Verify(ctx, code)
	require.NoError(t, err)
	require.NoError(t, clientsvc.ResetPassword(ctx, st.auth, ticket, "Fresh123!", "Fresh123!"))
	assert.False(t, st.auth.IsAuthenticated())

	_, err = st.auth.Login(ctx, "admin@example.com", "Admin123!")
	var failed *clientsvc.LoginFailedError
	require.True(t, errors.As(err, &failed))

	_, err = st.auth.Login(ctx, "admin@example.com", "Fresh123!")
	require.NoError(t, err)
}

func TestEndToEnd_ExpiredTokenSignsOut(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	_, err := st.auth.Login(ctx, "admin@example.com", "Admin123!")
	require.NoError(t, err)

	var states []models.SessionState
	var mu sync.Mutex
	unsubscribe := st.auth.Subscribe(func(s clientsvc.Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})
	defer unsubscribe()

	st.serverClock.Advance(2 * time.Hour)
	err = st.auth.UpdatePassword(ctx, "Admin123!", "Next1234!", "Next1234!")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrSessionExpired)

	assert.Equal(t, models.Unauthenticated, st.auth.State())
	rec, err := st.store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, rec.HasSession())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, models.Unauthenticated)
}
