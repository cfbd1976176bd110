package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/common"
	"github.com/dmitrijs2005/adminauth/internal/logging"
)

const (
	PathLogin              = "/auth/login"
	PathLogout             = "/auth/logout"
	PathForgot             = "/auth/forgot"
	PathVerifyOTP          = "/auth/verify-otp"
	PathUpdatePassword     = "/auth/update-password"
	PathUpdatePasswordAuth = "/auth/update-password-auth"
	PathRegister           = "/auth/register"

	DefaultTimeout = 100 * time.Second
)

// HTTPClient implements Client over the gateway REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu             sync.RWMutex
	tokenSource    func() string
	onUnauthorized func(ctx context.Context)
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     logging.NopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokenSource registers the function that supplies the bearer token.
func (c *HTTPClient) SetTokenSource(fn func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenSource = fn
}

// OnUnauthorized registers the handler fired when an authenticated call
// comes back with 401.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokenSource == nil {
		return ""
	}
	return c.tokenSource()
}

func (c *HTTPClient) unauthorized(ctx context.Context) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	var env Envelope[SessionData]
	hdr := deviceHeaders(req.DeviceUniqueID, req.DeviceModel)
	if err := c.post(ctx, "login", PathLogin, req, hdr, &env); err != nil {
		return nil, err
	}
	return &AuthResult{Token: env.Data.Token, User: env.Data.User, Message: env.Message}, nil
}

func (c *HTTPClient) Logout(ctx context.Context) (string, error) {
	var env Envelope[json.RawMessage]
	if err := c.post(ctx, "logout", PathLogout, nil, nil, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error) {
	var env Envelope[json.RawMessage]
	if err := c.post(ctx, "forgot_password", PathForgot, req, nil, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error) {
	var env Envelope[SessionData]
	hdr := deviceHeaders(req.DeviceUniqueID, req.DeviceModel)
	if err := c.post(ctx, "verify_otp", PathVerifyOTP, req, hdr, &env); err != nil {
		return nil, err
	}
	return &AuthResult{Token: env.Data.Token, User: env.Data.User, Message: env.Message}, nil
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) (string, error) {
	var env Envelope[json.RawMessage]
	if err := c.post(ctx, "update_password", PathUpdatePassword, req, nil, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) UpdatePasswordAuth(ctx context.Context, req UpdatePasswordAuthRequest) (string, error) {
	var env Envelope[json.RawMessage]
	if err := c.post(ctx, "update_password_auth", PathUpdatePasswordAuth, req, nil, &env); err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var env Envelope[UserData]
	if err := c.post(ctx, "register", PathRegister, req, nil, &env); err != nil {
		return nil, err
	}
	return &RegisterResult{User: env.Data.User, Message: env.Message}, nil
}

func deviceHeaders(id, model string) http.Header {
	h := http.Header{}
	h.Set(common.DeviceUniqueIDHeaderName, id)
	h.Set(common.DeviceModelHeaderName, model)
	return h
}

// envelope is satisfied by every Envelope instantiation.
type envelope interface {
	ok() bool
	message() string
}

func (e *Envelope[T]) ok() bool        { return e.Success }
func (e *Envelope[T]) message() string { return e.Message }

func (c *HTTPClient) post(ctx context.Context, op, path string, body any, hdr http.Header, out envelope) error {
	var rdr io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &GatewayError{Op: op, Message: fallbackMessage, Err: err}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rdr)
	if err != nil {
		return &GatewayError{Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header[k] = v
	}

	token := c.token()
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "gateway unreachable", "op", op, "error", err)
		msg := err.Error()
		if msg == "" {
			msg = fallbackMessage
		}
		return &GatewayError{Op: op, Message: msg, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Op: op, Status: resp.StatusCode, Message: err.Error(), Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	c.log.Debug(ctx, "gateway response", "op", op, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(ctx, op, resp.StatusCode, raw, token != "")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{Op: op, Status: resp.StatusCode, Message: fallbackMessage, Err: err}
	}
	if !out.ok() {
		msg := out.message()
		if msg == "" {
			msg = unsuccessfulMessage
		}
		return &GatewayError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	return nil
}

func (c *HTTPClient) statusError(ctx context.Context, op string, status int, raw []byte, hadToken bool) error {
	var body Envelope[json.RawMessage]
	msg := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		msg = body.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}

	gerr := &GatewayError{Op: op, Status: status, Message: msg}
	if status == http.StatusUnauthorized {
		if hadToken {
			gerr.Err = ErrSessionExpired
			c.unauthorized(ctx)
		} else {
			gerr.Err = ErrUnauthorized
		}
	}
	return gerr
}

// MessageOf extracts the user-facing message of err, falling back to the
// generic text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var gerr *GatewayError
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackMessage
}
