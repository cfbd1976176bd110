package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/adminauth/internal/client/lockout"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.authService.CurrentUser(); u != nil {
		s = u.Name + " " + u.Role
	}
	if a.authService.Snapshot().LockedUntil != nil {
		if s != "" {
			s += " "
		}
		s += "locked"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// WhoAmI prints the signed-in user's profile.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.authService.CurrentUser()
	if u == nil {
		return nil
	}
	printlnFn("Name:", u.Name)
	printlnFn("Role:", u.Role)
	if u.Email != "" {
		printlnFn("Email:", u.Email)
	}
	return nil
}

// Status prints the session state, the failed-attempt counter and any
// pending lock or OTP countdown.
func (a *App) Status(ctx context.Context) error {
	printlnFn("Session:", a.authService.State())

	max := a.authService.Policy().MaxLoginAttempts
	printlnFn(fmt.Sprintf("Failed attempts: %d/%d", a.authService.LoginAttempts(), max))

	if d := a.authService.RemainingLockTime(ctx); d > 0 {
		printlnFn(fmt.Sprintf("Locked: %d minutes remaining", lockout.RemainingMinutes(d)))
	}

	if email := a.otpFlow.Email(); email != "" {
		c, err := a.otpFlow.Status(ctx)
		if err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Password reset for %s: %s", email, c))
	}
	return nil
}

// Root runs the REPL on the App's input.
func (a *App) Root(ctx context.Context) {
	printlnFn("Admin console (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
