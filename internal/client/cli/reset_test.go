package cli

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/client"
	"github.com/dmitrijs2005/adminauth/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetFlow(t *testing.T) {
	out := captureOutput(t)
	app := newTestApp(t, "")
	ctx := context.Background()
	stubInputs(t, []string{"a@b.com", "123456"}, []string{"N3w!pass", "N3w!pass"})

	require.NoError(t, app.Forgot(ctx))
	assert.Equal(t, "a@b.com", app.auth.forgotEmail)
	assert.Contains(t, *out, "Enter the code sent to a@b.com with 'verify'. Resend in 10:00")

	require.NoError(t, app.Verify(ctx))
	assert.Equal(t, "a@b.com", app.auth.verifyEmail)
	assert.Equal(t, "123456", app.auth.verifyCode)
	assert.True(t, app.resetTicket().Valid())

	require.NoError(t, app.Reset(ctx))
	assert.Equal(t, 1, app.auth.authCalls)
	assert.Equal(t, "N3w!pass", app.auth.authNew)
	assert.False(t, app.resetTicket().Valid())
	assert.Empty(t, app.otpFlow.Email())

	_, ok, err := app.store.OTPExpiry(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WithoutForgot(t *testing.T) {
	app := newTestApp(t, "")
	assert.ErrorIs(t, app.Verify(context.Background()), services.ErrMissingEmail)
}

func TestVerify_FailureKeepsTicketEmpty(t *testing.T) {
	captureOutput(t)
	app := newTestApp(t, "")
	ctx := context.Background()
	stubInputs(t, []string{"a@b.com", "000000"}, nil)
	app.auth.verifyErr = &client.GatewayError{Status: 400, Message: "Invalid OTP"}

	require.NoError(t, app.Forgot(ctx))
	err := app.Verify(ctx)
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP", client.MessageOf(err))
	assert.False(t, app.resetTicket().Valid())
}

func TestReset_RequiresVerify(t *testing.T) {
	app := newTestApp(t, "")
	stubInputs(t, nil, nil)
	assert.ErrorIs(t, app.Reset(context.Background()), services.ErrResetNotVerified)
	assert.Zero(t, app.auth.authCalls)
}

func TestResend_Countdown(t *testing.T) {
	out := captureOutput(t)
	app := newTestApp(t, "")
	ctx := context.Background()
	stubInputs(t, []string{"a@b.com"}, nil)

	require.NoError(t, app.Forgot(ctx))

	app.clock.Advance(4*time.Minute + 30*time.Second)
	require.NoError(t, app.Resend(ctx))
	assert.Equal(t, "Resend in 5:30", (*out)[len(*out)-1])

	app.clock.Advance(6 * time.Minute)
	require.NoError(t, app.Resend(ctx))
	assert.Equal(t, "Resend in 10:00", (*out)[len(*out)-1])
}

func TestLogin_AbandonsPendingReset(t *testing.T) {
	captureOutput(t)
	app := newTestApp(t, "")
	ctx := context.Background()
	stubInputs(t, []string{"a@b.com", "a@b.com"}, []string{"pw"})

	require.NoError(t, app.Forgot(ctx))
	_, ok, err := app.store.OTPExpiry(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, app.Login(ctx))

	assert.Empty(t, app.otpFlow.Email())
	assert.False(t, app.resetTicket().Valid())
	_, ok, err = app.store.OTPExpiry(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, app.Verify(ctx), services.ErrMissingEmail)
}

func TestWait_FollowsCountdown(t *testing.T) {
	out := captureOutput(t)
	app := newTestApp(t, "")
	app.tick = time.Millisecond
	ctx := context.Background()
	stubInputs(t, []string{"a@b.com"}, nil)
	require.NoError(t, app.Forgot(ctx))

	capture := printlnFn
	printlnFn = func(a ...any) (int, error) {
		app.clock.Advance(5 * time.Minute)
		return capture(a...)
	}

	require.NoError(t, app.Wait(ctx))
	assert.Equal(t, []string{"Resend in 10:00", "Resend in 5:00", "Resend code"}, (*out)[1:])
}

func TestWait_WithoutForgot(t *testing.T) {
	app := newTestApp(t, "")
	assert.ErrorIs(t, app.Wait(context.Background()), services.ErrMissingEmail)
}
