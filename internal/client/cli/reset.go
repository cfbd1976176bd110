package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/dmitrijs2005/adminauth/internal/common"
)

// Forgot asks the gateway to email a one-time code and starts the resend
// countdown.
func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return err
	}

	a.setResetTicket(services.ResetTicket{})
	c, err := a.otpFlow.Begin(ctx, email)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Enter the code sent to %s with 'verify'. %s", email, c))
	return nil
}

// Verify checks the emailed code. A verified code unlocks 'reset'.
func (a *App) Verify(ctx context.Context) error {
	if a.otpFlow.Email() == "" {
		return services.ErrMissingEmail
	}

	n := a.authService.Policy().OTPLength
	code, err := getSimpleText(a.reader, fmt.Sprintf("Enter the %d-digit code", n), a.out)
	if err != nil {
		return err
	}

	ticket, err := a.otpFlow.Verify(ctx, code)
	if err != nil {
		return err
	}
	a.setResetTicket(ticket)
	printlnFn("Choose a new password with 'reset'")
	return nil
}

// Resend requests another code once the countdown has run out.
func (a *App) Resend(ctx context.Context) error {
	c, err := a.otpFlow.Resend(ctx)
	if errors.Is(err, services.ErrResendNotAllowed) {
		printlnFn(c.String())
		return nil
	}
	if err != nil {
		return err
	}
	printlnFn(c.String())
	return nil
}

// Reset sets a new password after a successful 'verify' and ends the reset
// flow.
func (a *App) Reset(ctx context.Context) error {
	ticket := a.resetTicket()
	if !ticket.Valid() {
		return services.ErrResetNotVerified
	}

	newPw, confirm, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPw)
	defer common.WipeByteArray(confirm)

	a.setLeaving(true)
	defer a.setLeaving(false)
	if err := services.ResetPassword(ctx, a.authService, ticket, string(newPw), string(confirm)); err != nil {
		return err
	}

	a.abandonReset(ctx)
	printlnFn("Log in with your new password")
	return nil
}

// Wait prints the resend countdown every tick until another code can be
// requested.
func (a *App) Wait(ctx context.Context) error {
	if a.otpFlow.Email() == "" {
		return services.ErrMissingEmail
	}
	return a.otpFlow.Watch(ctx, a.tick, func(c services.Countdown) {
		printlnFn(c.String())
	})
}

// abandonReset leaves the reset flow: the ticket, the bound email and the
// persisted resend deadline are dropped.
func (a *App) abandonReset(ctx context.Context) {
	a.setResetTicket(services.ResetTicket{})
	if a.otpFlow.Email() == "" {
		return
	}
	if err := a.otpFlow.Abandon(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear otp state", "error", err)
	}
}
