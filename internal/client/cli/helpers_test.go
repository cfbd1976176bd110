package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/credentials"
	"github.com/dmitrijs2005/adminauth/internal/client/lockout"
	"github.com/dmitrijs2005/adminauth/internal/client/models"
	"github.com/dmitrijs2005/adminauth/internal/client/password"
	"github.com/dmitrijs2005/adminauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/dmitrijs2005/adminauth/internal/timex"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// captureOutput replaces printlnFn and returns the printed lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubInputs feeds texts to getSimpleText and passwords to getPassword in order.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

// fakeAuth embeds the interface so unexpected calls panic.
type fakeAuth struct {
	services.AuthService

	user     *models.UserProfile
	locked   time.Duration
	attempts int

	loginEmail, loginPass string
	loginErr              error

	logoutCalls int
	logoutErr   error

	regEmail, regPass, regName string
	regErr                     error

	forgotEmail string
	forgotErr   error

	verifyEmail, verifyCode string
	verifyErr               error

	updCurrent, updNew, updConfirm string
	updErr                         error

	authNew, authConfirm string
	authCalls            int
	authErr              error

	closed bool
	subs   []func(services.Snapshot)
}

func (f *fakeAuth) Initialize(context.Context) error { return nil }

func (f *fakeAuth) Login(_ context.Context, email, pw string) (*models.UserProfile, error) {
	f.loginEmail, f.loginPass = email, pw
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &models.UserProfile{Name: "Alice", Role: "admin", Email: email}
	return f.user, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	f.user = nil
	return f.logoutErr
}

func (f *fakeAuth) Register(_ context.Context, email, pw, name string) (*models.UserProfile, error) {
	f.regEmail, f.regPass, f.regName = email, pw, name
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.UserProfile{Name: name, Role: "admin"}, nil
}

func (f *fakeAuth) ForgotPassword(_ context.Context, email string) error {
	f.forgotEmail = email
	return f.forgotErr
}

func (f *fakeAuth) VerifyOTP(_ context.Context, email, code string) error {
	f.verifyEmail, f.verifyCode = email, code
	return f.verifyErr
}

func (f *fakeAuth) UpdatePassword(_ context.Context, current, newPw, confirm string) error {
	f.updCurrent, f.updNew, f.updConfirm = current, newPw, confirm
	return f.updErr
}

func (f *fakeAuth) UpdatePasswordAuth(_ context.Context, newPw, confirm string) error {
	f.authCalls++
	f.authNew, f.authConfirm = newPw, confirm
	return f.authErr
}

func (f *fakeAuth) Subscribe(fn func(services.Snapshot)) func() {
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeAuth) Snapshot() services.Snapshot {
	s := services.Snapshot{State: f.State(), User: f.user, LoginAttempts: f.attempts}
	if f.locked > 0 {
		until := t0.Add(f.locked)
		s.LockedUntil = &until
	}
	return s
}

func (f *fakeAuth) State() models.SessionState {
	if f.user != nil {
		return models.Authenticated
	}
	return models.Unauthenticated
}

func (f *fakeAuth) CurrentUser() *models.UserProfile                { return f.user }
func (f *fakeAuth) IsAuthenticated() bool                           { return f.user != nil }
func (f *fakeAuth) IsLockedOut(context.Context) bool                { return f.locked > 0 }
func (f *fakeAuth) RemainingLockTime(context.Context) time.Duration { return f.locked }
func (f *fakeAuth) LoginAttempts() int                              { return f.attempts }
func (f *fakeAuth) Policy() lockout.Policy                          { return lockout.DefaultPolicy() }
func (f *fakeAuth) PasswordPolicy() password.Policy                 { return password.DefaultPolicy() }
func (f *fakeAuth) Close(context.Context) error                     { f.closed = true; return nil }

type testApp struct {
	*App
	auth  *fakeAuth
	store *credentials.Store
	clock *timex.ManualClock
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	auth := &fakeAuth{}
	store := credentials.New(metadata.NewMemoryRepository())
	clock := timex.NewManualClock(t0)
	flow := services.NewOTPFlow(auth, store, clock, nil)
	app := NewApp(auth, flow, strings.NewReader(input), io.Discard, nil)
	return &testApp{App: app, auth: auth, store: store, clock: clock}
}
