// Package services contains application services for the admin console
// client. This file defines the auth session controller: login with lockout,
// logout, the forgot-password / OTP / reset sequence, password change and
// registration, plus the observable session state the terminal client
// renders from.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/client"
	"github.com/dmitrijs2005/adminauth/internal/client/credentials"
	"github.com/dmitrijs2005/adminauth/internal/client/lockout"
	"github.com/dmitrijs2005/adminauth/internal/client/models"
	"github.com/dmitrijs2005/adminauth/internal/client/otp"
	"github.com/dmitrijs2005/adminauth/internal/client/password"
	"github.com/dmitrijs2005/adminauth/internal/common"
	"github.com/dmitrijs2005/adminauth/internal/logging"
	"github.com/dmitrijs2005/adminauth/internal/timex"
)

// Default notices shown when the gateway does not send a message.
const (
	NoticeLoginSuccess    = "Login successful"
	NoticeLogoutSuccess   = "Logout successful"
	NoticeOTPVerified     = "OTP verified successfully"
	NoticeOTPSent         = "OTP sent successfully"
	NoticePasswordUpdated = "Password updated successfully"
	NoticeRegistered      = "User registered successfully"
)

// Snapshot is the observable controller state. Notice carries the success
// message of the operation that produced the snapshot, if any.
type Snapshot struct {
	State         models.SessionState
	User          *models.UserProfile
	Loading       bool
	LoginAttempts int
	LockedUntil   *time.Time
	Notice        string
}

// AuthService is the auth session controller used by the terminal client.
//
// Contract:
//   - Initialize: restore the session from the credential store.
//   - Login: lockout check, gateway login, attempt accounting.
//   - Logout: best-effort gateway logout, local state always cleared.
//   - ForgotPassword / VerifyOTP / UpdatePasswordAuth: the reset sequence.
//   - UpdatePassword: change password while signed in.
//   - Register: create an account without signing in.
//   - HandleSessionExpired: local cleanup after a 401 on an authenticated call.
//
// All methods honor context cancellation.
type AuthService interface {
	Initialize(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	UpdatePassword(ctx context.Context, current, newPassword, confirm string) error
	UpdatePasswordAuth(ctx context.Context, newPassword, confirm string) error
	Register(ctx context.Context, email, password, name string) (*models.UserProfile, error)
	HandleSessionExpired(ctx context.Context)

	Subscribe(fn func(Snapshot)) (unsubscribe func())
	Snapshot() Snapshot
	State() models.SessionState
	CurrentUser() *models.UserProfile
	IsAuthenticated() bool
	Loading() bool
	IsLockedOut(ctx context.Context) bool
	LoginAttempts() int
	RemainingLockTime(ctx context.Context) time.Duration
	Token() string
	Policy() lockout.Policy
	PasswordPolicy() password.Policy
	Close(ctx context.Context) error
}

type Option func(*authService)

func WithPolicy(p lockout.Policy) Option {
	return func(a *authService) { a.policy = p.Normalize() }
}

func WithPasswordPolicy(p password.Policy) Option {
	return func(a *authService) { a.passwords = p }
}

// WithRole sets the role sent with forgot-password and OTP requests.
func WithRole(role string) Option {
	return func(a *authService) {
		if role != "" {
			a.role = role
		}
	}
}

func WithClock(c timex.Clock) Option {
	return func(a *authService) { a.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(a *authService) { a.log = l }
}

// WithDeviceModel overrides the devicemodel label.
func WithDeviceModel(model string) Option {
	return func(a *authService) {
		if model != "" {
			a.deviceModel = model
		}
	}
}

// authService is the concrete AuthService backed by a gateway Client and a
// credential Store.
type authService struct {
	gateway client.Client
	store   *credentials.Store

	policy      lockout.Policy
	passwords   password.Policy
	role        string
	deviceModel string
	clock       timex.Clock
	log         logging.Logger

	// loginMu serialises the read-modify-write of the attempt counter.
	loginMu sync.Mutex

	mu          sync.RWMutex
	state       models.SessionState
	user        *models.UserProfile
	token       string
	loading     bool
	attempts    int
	lockedUntil *time.Time

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// NewAuthService constructs the controller. It starts in the loading state
// until Initialize runs.
func NewAuthService(gateway client.Client, store *credentials.Store, opts ...Option) AuthService {
	a := &authService{
		gateway:     gateway,
		store:       store,
		policy:      lockout.DefaultPolicy(),
		passwords:   password.DefaultPolicy(),
		role:        common.DefaultRole,
		deviceModel: DefaultDeviceModel(),
		clock:       timex.SystemClock{},
		log:         logging.NopLogger{},
		loading:     true,
		subs:        make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(a)
	}
	a.log = a.log.With("component", "auth")
	return a
}

func (a *authService) Initialize(ctx context.Context) error {
	rec, err := a.store.Load(ctx)
	switch {
	case errors.Is(err, credentials.ErrCorruptState):
		a.log.Warn(ctx, "discarding corrupt credential record", "error", err)
		if cerr := a.store.ClearSession(ctx); cerr != nil {
			a.log.Error(ctx, "failed to clear corrupt session", "error", cerr)
		}
		rec.Token, rec.User = "", nil
	case err != nil:
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
		a.notify("")
		return fmt.Errorf("load credentials: %w", err)
	}

	a.mu.Lock()
	if rec.HasSession() {
		a.state = models.Authenticated
		a.user = rec.User
		a.token = rec.Token
	} else {
		a.state = models.Unauthenticated
		a.user = nil
		a.token = ""
	}
	a.attempts = rec.LoginAttempts
	a.lockedUntil = rec.LockedUntil
	a.loading = false
	a.mu.Unlock()

	a.log.Debug(ctx, "session restored", "state", a.State().String())
	a.notify("")
	return nil
}

func (a *authService) Login(ctx context.Context, email, pw string) (*models.UserProfile, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if pw == "" {
		return nil, invalid("password", "Password is required")
	}

	a.loginMu.Lock()
	defer a.loginMu.Unlock()

	rec, err := a.store.Load(ctx)
	if err != nil && !errors.Is(err, credentials.ErrCorruptState) {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	now := a.clock.Now()
	if lockout.IsLockedOut(rec.LockedUntil, now) {
		a.setLock(rec.LoginAttempts, rec.LockedUntil)
		remaining := lockout.RemainingLock(rec.LockedUntil, now)
		a.log.Info(ctx, "login refused, account locked", "email", email, "remaining", remaining)
		return nil, &LockoutError{Remaining: remaining}
	}

	attempts := rec.LoginAttempts
	if rec.LockedUntil != nil {
		// an expired lock starts a fresh window
		attempts = 0
	}

	dev := newDevice(now, a.deviceModel)
	res, err := a.gateway.Login(ctx, client.LoginRequest{
		Email:          email,
		Password:       pw,
		DeviceUniqueID: dev.UniqueID,
		DeviceModel:    dev.Model,
	})
	if err == nil && res.Token == "" {
		err = ErrNoSession
	}
	if err != nil {
		return nil, a.recordFailure(ctx, email, attempts, now, err)
	}

	user := res.User
	err = a.store.Apply(ctx, credentials.Transition{
		SetSession:  &credentials.Session{Token: res.Token, User: user},
		SetAttempts: credentials.Attempts(0),
		ClearLock:   true,
	})
	if err != nil {
		a.log.Error(ctx, "failed to persist session", "email", email, "error", err)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	a.mu.Lock()
	a.state = models.Authenticated
	a.user = &user
	a.token = res.Token
	a.attempts = 0
	a.lockedUntil = nil
	a.mu.Unlock()

	a.log.Info(ctx, "login succeeded", "email", email, "role", user.Role)
	a.notify(noticeOr(res.Message, NoticeLoginSuccess))
	out := user
	return &out, nil
}

func (a *authService) recordFailure(ctx context.Context, email string, attempts int, now time.Time, cause error) error {
	out := lockout.RecordFailedAttempt(attempts, now, a.policy)
	if err := a.store.Apply(ctx, credentials.FromOutcome(out)); err != nil {
		a.log.Error(ctx, "failed to persist login attempt", "email", email, "error", err)
	}
	a.setLock(out.Attempts, out.LockedUntil)
	a.notify("")

	a.log.Error(ctx, "login failed", "email", email, "attempts", out.Attempts, "error", cause)

	if out.Locked {
		a.log.Warn(ctx, "account locked", "email", email, "until", out.LockedUntil)
		return &LockoutError{Remaining: a.policy.LockoutDuration, JustLocked: true, Err: cause}
	}
	return &LoginFailedError{Remaining: lockout.AttemptsRemaining(out.Attempts, a.policy), Err: cause}
}

func (a *authService) Logout(ctx context.Context) error {
	msg, gerr := a.gateway.Logout(ctx)
	werr := a.clearLocal(ctx)

	if gerr != nil {
		a.log.Error(ctx, "gateway logout failed", "error", gerr)
		a.notify("")
		return fmt.Errorf("logout failed: %w", gerr)
	}

	a.log.Info(ctx, "logged out")
	a.notify(noticeOr(msg, NoticeLogoutSuccess))
	return werr
}

// clearLocal wipes the record and resets the in-memory session.
func (a *authService) clearLocal(ctx context.Context) error {
	err := a.store.Wipe(ctx)
	if err != nil {
		a.log.Error(ctx, "failed to wipe credentials", "error", err)
		err = fmt.Errorf("wipe credentials: %w", err)
	}

	a.mu.Lock()
	a.state = models.Unauthenticated
	a.user = nil
	a.token = ""
	a.attempts = 0
	a.lockedUntil = nil
	a.mu.Unlock()
	return err
}

func (a *authService) HandleSessionExpired(ctx context.Context) {
	a.log.Warn(ctx, "session expired, signing out")
	_ = a.clearLocal(ctx)
	a.notify("")
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}

	msg, err := a.gateway.ForgotPassword(ctx, client.ForgotPasswordRequest{Email: email, Role: a.role})
	if err != nil {
		a.log.Error(ctx, "forgot password failed", "email", email, "error", err)
		return err
	}

	a.log.Info(ctx, "otp requested", "email", email)
	a.notify(noticeOr(msg, NoticeOTPSent))
	return nil
}

func (a *authService) VerifyOTP(ctx context.Context, email, code string) error {
	if email == "" {
		return ErrMissingEmail
	}
	if err := otp.ValidateCode(code, a.policy.OTPLength); err != nil {
		return invalid("otp", fmt.Sprintf("Please enter all %d digits", a.policy.OTPLength))
	}

	dev := newDevice(a.clock.Now(), a.deviceModel)
	res, err := a.gateway.VerifyOTP(ctx, client.VerifyOTPRequest{
		Email:          email,
		Role:           a.role,
		OTP:            code,
		DeviceUniqueID: dev.UniqueID,
		DeviceModel:    dev.Model,
	})
	if err == nil && res.Token == "" {
		err = ErrNoSession
	}
	if err != nil {
		a.log.Error(ctx, "otp verification failed", "email", email, "error", err)
		return err
	}

	user := res.User
	err = a.store.Apply(ctx, credentials.Transition{
		SetSession: &credentials.Session{Token: res.Token, User: user},
	})
	if err != nil {
		a.log.Error(ctx, "failed to persist session", "email", email, "error", err)
		return fmt.Errorf("persist session: %w", err)
	}

	a.mu.Lock()
	a.state = models.Authenticated
	a.user = &user
	a.token = res.Token
	a.mu.Unlock()

	a.log.Info(ctx, "otp verified", "email", email)
	a.notify(noticeOr(res.Message, NoticeOTPVerified))
	return nil
}

func (a *authService) UpdatePassword(ctx context.Context, current, newPassword, confirm string) error {
	if !a.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	var errs ValidationErrors
	if current == "" {
		errs = append(errs, invalid("currentPassword", "Current password is required"))
	}
	errs = append(errs, newPasswordErrors(a.passwords, newPassword, confirm)...)
	if err := errs.err(); err != nil {
		return err
	}

	msg, err := a.gateway.UpdatePassword(ctx, client.UpdatePasswordRequest{
		CurrentPassword: current,
		NewPassword:     newPassword,
	})
	if err != nil {
		a.log.Error(ctx, "password change failed", "error", err)
		return err
	}

	a.log.Info(ctx, "password changed")
	a.notify(noticeOr(msg, NoticePasswordUpdated))
	return nil
}

func (a *authService) UpdatePasswordAuth(ctx context.Context, newPassword, confirm string) error {
	if a.Token() == "" {
		return ErrNotAuthenticated
	}
	if err := newPasswordErrors(a.passwords, newPassword, confirm).err(); err != nil {
		return err
	}

	msg, err := a.gateway.UpdatePasswordAuth(ctx, client.UpdatePasswordAuthRequest{NewPassword: newPassword})
	if err != nil {
		a.log.Error(ctx, "password reset failed", "error", err)
		return err
	}

	werr := a.clearLocal(ctx)
	a.log.Info(ctx, "password reset completed")
	a.notify(noticeOr(msg, NoticePasswordUpdated))
	return werr
}

func (a *authService) Register(ctx context.Context, email, pw, name string) (*models.UserProfile, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	if pw == "" {
		return nil, invalid("password", "Password is required")
	}
	if v := a.passwords.Violations(pw); len(v) > 0 {
		return nil, invalid("password", password.Message(v))
	}

	res, err := a.gateway.Register(ctx, client.RegisterRequest{Email: email, Password: pw, Name: name})
	if err != nil {
		a.log.Error(ctx, "registration failed", "email", email, "error", err)
		return nil, err
	}

	a.log.Info(ctx, "user registered", "email", email)
	a.notify(noticeOr(res.Message, NoticeRegistered))
	user := res.User
	return &user, nil
}

func (a *authService) Subscribe(fn func(Snapshot)) func() {
	a.subMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.subMu.Unlock()

	return func() {
		a.subMu.Lock()
		delete(a.subs, id)
		a.subMu.Unlock()
	}
}

func (a *authService) notify(notice string) {
	snap := a.Snapshot()
	snap.Notice = notice

	a.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (a *authService) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Snapshot{
		State:         a.state,
		Loading:       a.loading,
		LoginAttempts: a.attempts,
	}
	if a.user != nil {
		u := *a.user
		s.User = &u
	}
	if a.lockedUntil != nil {
		t := *a.lockedUntil
		s.LockedUntil = &t
	}
	return s
}

func (a *authService) setLock(attempts int, until *time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attempts = attempts
	a.lockedUntil = until
}

func (a *authService) State() models.SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *authService) CurrentUser() *models.UserProfile {
	return a.Snapshot().User
}

func (a *authService) IsAuthenticated() bool {
	return a.State() == models.Authenticated
}

func (a *authService) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

func (a *authService) IsLockedOut(ctx context.Context) bool {
	return a.RemainingLockTime(ctx) > 0
}

func (a *authService) LoginAttempts() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.attempts
}

// RemainingLockTime returns the time left on the lock. Once a lock has run
// out the counter and lock are reset in the store.
func (a *authService) RemainingLockTime(ctx context.Context) time.Duration {
	a.mu.RLock()
	until := a.lockedUntil
	a.mu.RUnlock()

	if until == nil {
		return 0
	}

	remaining := lockout.RemainingLock(until, a.clock.Now())
	if remaining > 0 {
		return remaining
	}

	if err := a.store.Apply(ctx, credentials.FromOutcome(lockout.RecordSuccess())); err != nil {
		a.log.Warn(ctx, "failed to clear expired lock", "error", err)
		return 0
	}
	a.setLock(0, nil)
	a.notify("")
	return 0
}

func (a *authService) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *authService) Policy() lockout.Policy {
	return a.policy
}

func (a *authService) PasswordPolicy() password.Policy {
	return a.passwords
}

func (a *authService) Close(ctx context.Context) error {
	return a.gateway.Close()
}

func noticeOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
