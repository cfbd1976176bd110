package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/dmitrijs2005/adminauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. While the account is locked
// no prompt is shown and the lockout error is returned. A pending password
// reset is abandoned first.
func (a *App) Login(ctx context.Context) error {
	a.abandonReset(ctx)

	if a.authService.IsLockedOut(ctx) {
		return &services.LockoutError{Remaining: a.authService.RemainingLockTime(ctx)}
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	pw, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	user, err := a.authService.Login(ctx, email, string(pw))
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s (%s)", user.Name, user.Role))
	return nil
}

// Logout ends the session. Local credentials are cleared even when the
// gateway call fails; that error is still returned.
func (a *App) Logout(ctx context.Context) error {
	a.setLeaving(true)
	defer a.setLeaving(false)
	return a.authService.Logout(ctx)
}

// Register prompts for a new admin account. The user stays signed out.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}

	a.printRequirements()
	pw, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if _, err := a.authService.Register(ctx, email, string(pw), name); err != nil {
		return err
	}
	return nil
}

// ChangePassword updates the password of the signed-in user.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	newPw, confirm, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPw)
	defer common.WipeByteArray(confirm)

	return a.authService.UpdatePassword(ctx, string(current), string(newPw), string(confirm))
}

func (a *App) readNewPassword() (newPw, confirm []byte, err error) {
	a.printRequirements()
	newPw, err = getPassword(a.out, "New password")
	if err != nil {
		return nil, nil, err
	}
	confirm, err = getPassword(a.out, "Confirm new password")
	if err != nil {
		common.WipeByteArray(newPw)
		return nil, nil, err
	}
	return newPw, confirm, nil
}

func (a *App) printRequirements() {
	reqs := a.authService.PasswordPolicy().Requirements()
	if len(reqs) == 0 {
		return
	}
	printlnFn("Password must contain: " + strings.Join(reqs, ", "))
}
