// Package credentials maps the typed credential record onto the flat
// metadata repository. Every multi-key change goes through Apply, which
// writes it in one repository batch.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/lockout"
	"github.com/dmitrijs2005/adminauth/internal/client/models"
	"github.com/dmitrijs2005/adminauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adminauth/internal/common"
)

// ErrCorruptState is returned by Load when the session half of the record
// cannot be decoded or only one of token and user is present.
var ErrCorruptState = errors.New("corrupt credential state")

// Session is the token and user pair written on login.
type Session struct {
	Token string
	User  models.UserProfile
}

// Transition is a declarative change set applied atomically.
type Transition struct {
	SetSession     *Session
	ClearSession   bool
	SetAttempts    *int
	SetLockedUntil *time.Time
	ClearLock      bool
}

// Attempts is a helper for Transition.SetAttempts.
func Attempts(n int) *int { return &n }

// FromOutcome converts a lockout decision into a Transition.
func FromOutcome(o lockout.Outcome) Transition {
	t := Transition{SetAttempts: Attempts(o.Attempts)}
	if o.LockedUntil != nil {
		t.SetLockedUntil = o.LockedUntil
	} else {
		t.ClearLock = true
	}
	return t
}

type Store struct {
	repo metadata.Repository
}

func New(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

// Load reads the full record. With ErrCorruptState the returned record still
// carries the attempt counter and lock.
func (s *Store) Load(ctx context.Context) (models.CredentialRecord, error) {
	var rec models.CredentialRecord

	raw, err := s.repo.List(ctx)
	if err != nil {
		return rec, err
	}

	rec.LoginAttempts = decodeAttempts(raw[common.KeyLoginAttempts])
	rec.LockedUntil = decodeLockedUntil(raw[common.KeyLockedUntil])

	token, hasToken := raw[common.KeyAuthToken]
	userData, hasUser := raw[common.KeyUserData]

	switch {
	case !hasToken && !hasUser:
		return rec, nil
	case hasToken != hasUser:
		return rec, fmt.Errorf("%w: token and user must be stored together", ErrCorruptState)
	case len(token) == 0:
		return rec, fmt.Errorf("%w: empty token", ErrCorruptState)
	}

	var user models.UserProfile
	if err := json.Unmarshal(userData, &user); err != nil {
		return rec, fmt.Errorf("%w: userData: %v", ErrCorruptState, err)
	}

	rec.Token = string(token)
	rec.User = &user
	return rec, nil
}

// Apply writes t in a single batch.
func (s *Store) Apply(ctx context.Context, t Transition) error {
	var userJSON []byte
	if t.SetSession != nil {
		var err error
		if userJSON, err = json.Marshal(t.SetSession.User); err != nil {
			return fmt.Errorf("encode userData: %w", err)
		}
	}

	var lockJSON []byte
	if t.SetLockedUntil != nil {
		lockJSON = encodeLockedUntil(t.SetLockedUntil)
	} else if t.ClearLock {
		lockJSON = encodeLockedUntil(nil)
	}

	return s.repo.Batch(ctx, func(ctx context.Context, tx metadata.Tx) error {
		if t.SetSession != nil {
			if err := tx.Set(common.KeyAuthToken, []byte(t.SetSession.Token)); err != nil {
				return err
			}
			if err := tx.Set(common.KeyUserData, userJSON); err != nil {
				return err
			}
		} else if t.ClearSession {
			if err := tx.Delete(common.KeyAuthToken); err != nil {
				return err
			}
			if err := tx.Delete(common.KeyUserData); err != nil {
				return err
			}
		}

		if t.SetAttempts != nil {
			if err := tx.Set(common.KeyLoginAttempts, []byte(strconv.Itoa(*t.SetAttempts))); err != nil {
				return err
			}
		}

		if lockJSON != nil {
			if err := tx.Set(common.KeyLockedUntil, lockJSON); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearSession removes token and user together.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.Apply(ctx, Transition{ClearSession: true})
}

// Wipe removes the session and resets the attempt counter and lock.
func (s *Store) Wipe(ctx context.Context) error {
	return s.Apply(ctx, Transition{ClearSession: true, SetAttempts: Attempts(0), ClearLock: true})
}

// OTPExpiry returns the persisted resend deadline, if any.
func (s *Store) OTPExpiry(ctx context.Context) (time.Time, bool, error) {
	raw, err := s.repo.Get(ctx, common.KeyOTPTimerExpiry)
	if err != nil {
		return time.Time{}, false, err
	}
	if raw == nil {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *Store) SetOTPExpiry(ctx context.Context, t time.Time) error {
	return s.repo.Set(ctx, common.KeyOTPTimerExpiry, []byte(strconv.FormatInt(t.UnixMilli(), 10)))
}

func (s *Store) ClearOTPExpiry(ctx context.Context) error {
	return s.repo.Delete(ctx, common.KeyOTPTimerExpiry)
}

func decodeAttempts(b []byte) int {
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func encodeLockedUntil(t *time.Time) []byte {
	if t == nil {
		return []byte("null")
	}
	b, _ := json.Marshal(t.UTC().Format(time.RFC3339Nano))
	return b
}

// decodeLockedUntil accepts a JSON string, a bare timestamp or null.
func decodeLockedUntil(b []byte) *time.Time {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal([]byte(s), &s); err != nil {
			return nil
		}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
