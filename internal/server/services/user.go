// Package services contains the gateway's business logic. UserService
// handles registration, login, bearer tokens and the OTP password reset.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/common"
	"github.com/dmitrijs2005/adminauth/internal/cryptox"
	"github.com/dmitrijs2005/adminauth/internal/dbx"
	"github.com/dmitrijs2005/adminauth/internal/logging"
	"github.com/dmitrijs2005/adminauth/internal/server/auth"
	"github.com/dmitrijs2005/adminauth/internal/server/config"
	"github.com/dmitrijs2005/adminauth/internal/server/models"
	"github.com/dmitrijs2005/adminauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/adminauth/internal/timex"
)

var (
	// ErrInvalidRequest means a required field was empty.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrWrongPassword means the current password did not match on a
	// change-password request.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// Session is a freshly issued bearer token and its owner.
type Session struct {
	Token string
	User  *models.User
}

// OTPSink receives every issued reset code. The development gateway prints
// it instead of sending an email.
type OTPSink func(email, code string)

type Option func(*UserService)

func WithClock(c timex.Clock) Option {
	return func(s *UserService) { s.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *UserService) { s.log = l }
}

func WithOTPSink(fn OTPSink) Option {
	return func(s *UserService) { s.otpSink = fn }
}

// UserService provides the account operations behind the REST endpoints.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	tokenTTL    time.Duration
	otpTTL      time.Duration
	otpLength   int
	clock       timex.Clock
	log         logging.Logger
	otpSink     OTPSink
}

// NewUserService constructs a UserService using repositories and gateway config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *UserService {
	s := &UserService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		tokenTTL:    cfg.TokenTTL,
		otpTTL:      cfg.OTPTTL,
		otpLength:   cfg.OTPLength,
		clock:       timex.SystemClock{},
		log:         logging.NopLogger{},
		otpSink:     func(string, string) {},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("module", "user_service")
	return s
}

// Register creates an admin account.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return nil, ErrInvalidRequest
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         common.DefaultRole,
		PasswordHash: cryptox.HashPassword(password),
		CreatedAt:    s.clock.Now(),
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Seed registers an account unless the email is already taken.
func (s *UserService) Seed(ctx context.Context, email, password, name string) error {
	_, err := s.Register(ctx, email, password, name)
	if err != nil && !errors.Is(err, common.ErrAlreadyExists) {
		return err
	}
	return nil
}

// Login verifies the password and issues a bearer token. Unknown emails and
// wrong passwords both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		s.log.Error(ctx, "stored hash unreadable", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret, s.clock.Now())
	if err != nil {
		return nil, err
	}

	revoked, err := s.repomanager.RevokedTokens(s.db).IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if revoked {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the token described by claims.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	repo := s.repomanager.RevokedTokens(s.db)
	if err := repo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	if n, err := repo.Purge(ctx, s.clock.Now()); err == nil && n > 0 {
		s.log.Debug(ctx, "purged revoked tokens", "count", n)
	}
	s.log.Info(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}

// ForgotPassword issues a new reset code for an account with the given role.
func (s *UserService) ForgotPassword(ctx context.Context, email, role string) error {
	user, err := s.findByEmailAndRole(ctx, email, role)
	if err != nil {
		return err
	}

	code := &models.OTPCode{
		Email:     user.Email,
		Code:      common.RandDigits(s.otpLength),
		ExpiresAt: s.clock.Now().Add(s.otpTTL),
	}
	if err := s.repomanager.OTPCodes(s.db).Save(ctx, code); err != nil {
		return common.ErrorInternal
	}

	s.log.Info(ctx, "otp issued", "user_id", user.ID, "expires_at", code.ExpiresAt)
	s.otpSink(user.Email, code.Code)
	return nil
}

// VerifyOTP consumes a valid reset code and issues a bearer token for the
// password reset step. A wrong or expired code yields common.ErrInvalidOTP.
func (s *UserService) VerifyOTP(ctx context.Context, email, role, code string) (*Session, error) {
	user, err := s.findByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidOTP
		}
		return nil, err
	}

	expired := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.OTPCodes(tx)
		stored, err := repo.Find(ctx, user.Email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOTP
			}
			return err
		}
		if !s.clock.Now().Before(stored.ExpiresAt) {
			expired = true
			return common.ErrInvalidOTP
		}
		if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
			return common.ErrInvalidOTP
		}
		return repo.Delete(ctx, user.Email)
	})
	// the failed transaction is rolled back, so an expired code goes separately
	if expired {
		if derr := s.repomanager.OTPCodes(s.db).Delete(ctx, user.Email); derr != nil {
			s.log.Warn(ctx, "failed to drop expired otp", "error", derr)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrInvalidOTP) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "otp verified", "user_id", user.ID)
	return s.issue(user)
}

// UpdatePassword changes the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, current, newPassword string) error {
	if current == "" || newPassword == "" {
		return ErrInvalidRequest
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, current)
	if err != nil {
		return common.ErrorInternal
	}
	if !ok {
		return ErrWrongPassword
	}

	if err := repo.UpdatePassword(ctx, userID, cryptox.HashPassword(newPassword)); err != nil {
		return err
	}
	s.log.Info(ctx, "password updated", "user_id", userID)
	return nil
}

// UpdatePasswordAuth sets a new password with the session obtained from
// VerifyOTP. The session is revoked afterwards.
func (s *UserService) UpdatePasswordAuth(ctx context.Context, claims *auth.Claims, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidRequest
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, claims.UserID, cryptox.HashPassword(newPassword)); err != nil {
			return err
		}
		return s.repomanager.RevokedTokens(tx).Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", claims.UserID)
	return nil
}

// --- helpers below ---

func (s *UserService) issue(user *models.User) (*Session, error) {
	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.clock.Now(), s.tokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{Token: token, User: user}, nil
}

func (s *UserService) findByEmailAndRole(ctx context.Context, email, role string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}
	if role != "" && user.Role != role {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
