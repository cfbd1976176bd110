package lockout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestIsLockedOut(t *testing.T) {
	until := t0.Add(2 * time.Minute)

	tests := []struct {
		name        string
		lockedUntil *time.Time
		now         time.Time
		want        bool
	}{
		{"no lock", nil, t0, false},
		{"before expiry", &until, t0, true},
		{"one ns before", &until, until.Add(-time.Nanosecond), true},
		{"at expiry", &until, until, false},
		{"after expiry", &until, until.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLockedOut(tt.lockedUntil, tt.now))
		})
	}
}

func TestRemainingLock(t *testing.T) {
	until := t0.Add(90 * time.Second)
	assert.Equal(t, time.Duration(0), RemainingLock(nil, t0))
	assert.Equal(t, 90*time.Second, RemainingLock(&until, t0))
	assert.Equal(t, time.Duration(0), RemainingLock(&until, t0.Add(time.Hour)))
}

func TestRemainingMinutes_RoundsUp(t *testing.T) {
	assert.Equal(t, 0, RemainingMinutes(0))
	assert.Equal(t, 0, RemainingMinutes(-time.Second))
	assert.Equal(t, 1, RemainingMinutes(time.Millisecond))
	assert.Equal(t, 1, RemainingMinutes(time.Minute))
	assert.Equal(t, 2, RemainingMinutes(61*time.Second))
	assert.Equal(t, 2, RemainingMinutes(90*time.Second))
	assert.Equal(t, 2, RemainingMinutes(2*time.Minute))
}

func TestRecordFailedAttempt_LocksOnFifth(t *testing.T) {
	p := DefaultPolicy()
	attempts := 0
	for i := 1; i < p.MaxLoginAttempts; i++ {
		out := RecordFailedAttempt(attempts, t0, p)
		require.Equal(t, i, out.Attempts)
		require.False(t, out.Locked)
		require.Nil(t, out.LockedUntil)
		attempts = out.Attempts
	}

	out := RecordFailedAttempt(attempts, t0, p)
	assert.Equal(t, 5, out.Attempts)
	assert.True(t, out.Locked)
	require.NotNil(t, out.LockedUntil)
	assert.Equal(t, t0.Add(2*time.Minute), *out.LockedUntil)
}

func TestRecordFailedAttempt_NegativeTreatedAsZero(t *testing.T) {
	out := RecordFailedAttempt(-7, t0, DefaultPolicy())
	assert.Equal(t, 1, out.Attempts)
	assert.False(t, out.Locked)
}

func TestRecordFailedAttempt_AboveLimitStillLocks(t *testing.T) {
	out := RecordFailedAttempt(9, t0, DefaultPolicy())
	assert.Equal(t, 10, out.Attempts)
	assert.True(t, out.Locked)
}

func TestRecordFailedAttempt_CustomPolicy(t *testing.T) {
	p := Policy{MaxLoginAttempts: 2, LockoutDuration: 30 * time.Second}
	out := RecordFailedAttempt(1, t0, p)
	require.True(t, out.Locked)
	assert.Equal(t, t0.Add(30*time.Second), *out.LockedUntil)
}

func TestRecordSuccess(t *testing.T) {
	assert.Equal(t, Outcome{}, RecordSuccess())
}

func TestPolicy_Normalize(t *testing.T) {
	assert.Equal(t, DefaultPolicy(), Policy{}.Normalize())
	assert.Equal(t, DefaultPolicy(), Policy{MaxLoginAttempts: -1, LockoutDuration: -time.Second}.Normalize())

	p := Policy{MaxLoginAttempts: 3, LockoutDuration: time.Minute, OTPLength: 4, OTPExpiry: time.Minute}
	assert.Equal(t, p, p.Normalize())
}

func TestAttemptsRemaining(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 5, AttemptsRemaining(0, p))
	assert.Equal(t, 2, AttemptsRemaining(3, p))
	assert.Equal(t, 0, AttemptsRemaining(5, p))
	assert.Equal(t, 0, AttemptsRemaining(8, p))
}
