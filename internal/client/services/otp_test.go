package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/client"
	"github.com/dmitrijs2005/adminauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlow(t *testing.T) (*fixture, *OTPFlow) {
	t.Helper()
	f := newFixture(t)
	return f, NewOTPFlow(f.svc, f.store, f.clock, nil)
}

func TestOTPFlow_BeginRequiresEmail(t *testing.T) {
	_, flow := newFlow(t)
	_, err := flow.Begin(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = flow.Resend(context.Background())
	assert.ErrorIs(t, err, ErrMissingEmail)
	_, err = flow.Verify(context.Background(), "123456")
	assert.ErrorIs(t, err, ErrMissingEmail)
}

func TestOTPFlow_BeginPersistsExpiry(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()

	c, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, Countdown{Remaining: 10 * time.Minute}, c)
	assert.Equal(t, "Resend in 10:00", c.String())
	assert.Equal(t, "1772359800000", string(f.raw(t, common.KeyOTPTimerExpiry)))
}

func TestOTPFlow_BeginResumesFutureExpiry(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetOTPExpiry(ctx, t0.Add(3*time.Minute)))

	c, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, c.Remaining)
	assert.False(t, c.CanResend)
}

func TestOTPFlow_PastExpiryCanResendImmediately(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetOTPExpiry(ctx, t0.Add(-time.Second)))

	c, err := flow.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Countdown{Remaining: 0, CanResend: true}, c)
	assert.Equal(t, "Resend code", c.String())
	assert.Nil(t, f.raw(t, common.KeyOTPTimerExpiry), "elapsed deadline is cleared")
}

// Scenario C
func TestOTPFlow_ForgotThenCountdownElapses(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@b.com"))
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	c, err := flow.Status(ctx)
	require.NoError(t, err)
	assert.False(t, c.CanResend)

	_, err = flow.Resend(ctx)
	assert.ErrorIs(t, err, ErrResendNotAllowed)
	assert.Equal(t, 1, f.gw.ForgotCalls)

	f.clock.Advance(10 * time.Minute)
	c, err = flow.Status(ctx)
	require.NoError(t, err)
	assert.True(t, c.CanResend)
	assert.Zero(t, c.Remaining)
}

func TestOTPFlow_Resend(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	c, err := flow.Resend(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, c.Remaining)
	assert.Equal(t, client.ForgotPasswordRequest{Email: "a@b.com", Role: "admin"}, f.gw.LastForgot)

	exp, ok, err := f.store.OTPExpiry(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, exp.Equal(t0.Add(21*time.Minute)))
}

func TestOTPFlow_ResendFailureKeepsNoDeadline(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	f.gw.ForgotErr = &client.GatewayError{Message: "Failed to resend OTP. Please try again."}
	_, err = flow.Resend(ctx)
	require.Error(t, err)

	_, ok, err := f.store.OTPExpiry(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPFlow_VerifyIssuesTicket(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	ticket, err := flow.Verify(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, ResetTicket{Email: "a@b.com", Verified: true}, ticket)
	assert.True(t, ticket.Valid())
	assert.Nil(t, f.raw(t, common.KeyOTPTimerExpiry))

	require.NoError(t, ResetPassword(ctx, f.svc, ticket, strongPwd, strongPwd))
	assert.False(t, f.svc.IsAuthenticated())
}

func TestOTPFlow_VerifyFailureKeepsDeadline(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	f.gw.VerifyErr = &client.GatewayError{Status: 400, Message: "Invalid OTP"}
	ticket, err := flow.Verify(ctx, "000000")
	require.Error(t, err)
	assert.False(t, ticket.Valid())
	assert.NotNil(t, f.raw(t, common.KeyOTPTimerExpiry))
}

func TestResetPassword_RequiresTicket(t *testing.T) {
	f, _ := newFlow(t)
	ctx := context.Background()

	assert.ErrorIs(t, ResetPassword(ctx, f.svc, ResetTicket{}, strongPwd, strongPwd), ErrResetNotVerified)
	assert.ErrorIs(t, ResetPassword(ctx, f.svc, ResetTicket{Email: "a@b.com"}, strongPwd, strongPwd), ErrResetNotVerified)
	assert.ErrorIs(t, ResetPassword(ctx, f.svc, ResetTicket{Verified: true}, strongPwd, strongPwd), ErrResetNotVerified)
	assert.Zero(t, f.gw.UpdateAuthCalls)
}

func TestOTPFlow_Abandon(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	require.NoError(t, flow.Abandon(ctx))
	assert.Nil(t, f.raw(t, common.KeyOTPTimerExpiry))
	assert.Empty(t, flow.Email())
}

func TestOTPFlow_WatchStopsWhenResendPossible(t *testing.T) {
	f, flow := newFlow(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetOTPExpiry(ctx, t0.Add(3*time.Second)))
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	var seen []Countdown
	err = flow.Watch(ctx, time.Millisecond, func(c Countdown) {
		seen = append(seen, c)
		f.clock.Advance(time.Second)
	})
	require.NoError(t, err)

	require.Len(t, seen, 4)
	assert.Equal(t, 3*time.Second, seen[0].Remaining)
	assert.Equal(t, Countdown{CanResend: true}, seen[3])
}

func TestOTPFlow_WatchHonorsContext(t *testing.T) {
	_, flow := newFlow(t)
	ctx, cancel := context.WithCancel(context.Background())
	_, err := flow.Begin(ctx, "a@b.com")
	require.NoError(t, err)

	calls := 0
	err = flow.Watch(ctx, time.Millisecond, func(Countdown) {
		calls++
		if calls == 2 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, calls, 2)
}
