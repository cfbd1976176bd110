package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/credentials"
	"github.com/dmitrijs2005/adminauth/internal/client/otp"
	"github.com/dmitrijs2005/adminauth/internal/logging"
	"github.com/dmitrijs2005/adminauth/internal/timex"
)

// Countdown is what the OTP prompt shows next to the resend action.
type Countdown struct {
	Remaining time.Duration
	CanResend bool
}

func (c Countdown) String() string {
	if c.CanResend {
		return "Resend code"
	}
	return "Resend in " + otp.FormatCountdown(c.Remaining)
}

// ResetTicket proves that the OTP for Email was verified. It is required
// before a new password can be set.
type ResetTicket struct {
	Email    string
	Verified bool
}

// Valid reports whether the ticket allows a password reset.
func (t ResetTicket) Valid() bool {
	return t.Verified && t.Email != ""
}

// OTPFlow drives the verify-OTP step of a password reset for one email. The
// resend deadline is persisted so that it survives a restart.
type OTPFlow struct {
	auth   AuthService
	store  *credentials.Store
	clock  timex.Clock
	log    logging.Logger
	expiry time.Duration
	email  string
}

// NewOTPFlow binds a flow to auth and store. clock and log may be nil.
func NewOTPFlow(auth AuthService, store *credentials.Store, clock timex.Clock, log logging.Logger) *OTPFlow {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &OTPFlow{
		auth:   auth,
		store:  store,
		clock:  clock,
		log:    log.With("component", "otp"),
		expiry: auth.Policy().OTPExpiry,
	}
}

// Email returns the address the flow is bound to.
func (f *OTPFlow) Email() string {
	return f.email
}

// Begin binds the flow to email. A deadline still in the future is resumed;
// otherwise a new one is persisted.
func (f *OTPFlow) Begin(ctx context.Context, email string) (Countdown, error) {
	if email == "" {
		return Countdown{}, ErrMissingEmail
	}
	f.email = email

	now := f.clock.Now()
	exp, ok, err := f.store.OTPExpiry(ctx)
	if err != nil {
		return Countdown{}, fmt.Errorf("read otp expiry: %w", err)
	}
	if ok && exp.After(now) {
		f.log.Debug(ctx, "resuming otp countdown", "email", email, "remaining", exp.Sub(now))
		return countdown(exp, now), nil
	}

	exp = now.Add(f.expiry)
	if err := f.store.SetOTPExpiry(ctx, exp); err != nil {
		return Countdown{}, fmt.Errorf("persist otp expiry: %w", err)
	}
	return countdown(exp, now), nil
}

// Status returns the current countdown. An elapsed deadline is removed from
// the store.
func (f *OTPFlow) Status(ctx context.Context) (Countdown, error) {
	now := f.clock.Now()
	exp, ok, err := f.store.OTPExpiry(ctx)
	if err != nil {
		return Countdown{}, fmt.Errorf("read otp expiry: %w", err)
	}
	if !ok {
		return Countdown{CanResend: true}, nil
	}

	c := countdown(exp, now)
	if c.CanResend {
		if err := f.store.ClearOTPExpiry(ctx); err != nil {
			return c, fmt.Errorf("clear otp expiry: %w", err)
		}
	}
	return c, nil
}

// Resend requests a new code once the countdown has run out.
func (f *OTPFlow) Resend(ctx context.Context) (Countdown, error) {
	if f.email == "" {
		return Countdown{}, ErrMissingEmail
	}

	c, err := f.Status(ctx)
	if err != nil {
		return Countdown{}, err
	}
	if !c.CanResend {
		return c, ErrResendNotAllowed
	}

	if err := f.auth.ForgotPassword(ctx, f.email); err != nil {
		return c, err
	}

	now := f.clock.Now()
	exp := now.Add(f.expiry)
	if err := f.store.SetOTPExpiry(ctx, exp); err != nil {
		return Countdown{}, fmt.Errorf("persist otp expiry: %w", err)
	}
	f.log.Info(ctx, "otp resent", "email", f.email)
	return countdown(exp, now), nil
}

// Verify checks code with the gateway. On success the deadline is cleared
// and a ticket for the reset step is returned.
func (f *OTPFlow) Verify(ctx context.Context, code string) (ResetTicket, error) {
	if f.email == "" {
		return ResetTicket{}, ErrMissingEmail
	}
	if err := f.auth.VerifyOTP(ctx, f.email, code); err != nil {
		return ResetTicket{}, err
	}
	if err := f.store.ClearOTPExpiry(ctx); err != nil {
		f.log.Warn(ctx, "failed to clear otp expiry", "error", err)
	}
	return ResetTicket{Email: f.email, Verified: true}, nil
}

// Abandon drops the persisted deadline.
func (f *OTPFlow) Abandon(ctx context.Context) error {
	f.email = ""
	return f.store.ClearOTPExpiry(ctx)
}

// Watch calls fn once per tick until ctx is done or a resend becomes
// possible. The final countdown is always delivered.
func (f *OTPFlow) Watch(ctx context.Context, tick time.Duration, fn func(Countdown)) error {
	c, err := f.Status(ctx)
	if err != nil {
		return err
	}
	fn(c)
	if c.CanResend {
		return nil
	}

	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			c, err := f.Status(ctx)
			if err != nil {
				return err
			}
			fn(c)
			if c.CanResend {
				return nil
			}
		}
	}
}

// ResetPassword sets a new password with the session obtained from Verify.
func ResetPassword(ctx context.Context, auth AuthService, ticket ResetTicket, newPassword, confirm string) error {
	if !ticket.Valid() {
		return ErrResetNotVerified
	}
	return auth.UpdatePasswordAuth(ctx, newPassword, confirm)
}

func countdown(exp, now time.Time) Countdown {
	return Countdown{
		Remaining: otp.Remaining(exp, now),
		CanResend: otp.CanResend(exp, now),
	}
}
