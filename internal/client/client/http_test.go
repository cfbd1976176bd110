package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   map[string]any
}

func newServer(t *testing.T, status int, resp string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.method = r.Method
			got.path = r.URL.Path
			got.header = r.Header.Clone()
			b, _ := io.ReadAll(r.Body)
			if len(b) > 0 {
				_ = json.Unmarshal(b, &got.body)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_SendsBodyAndDeviceHeaders(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK,
		`{"success":true,"message":"Welcome back","data":{"token":"jwt-1","user":{"name":"Ada","role":"admin"}}}`, &got)
	c := NewHTTPClient(srv.URL + "/")

	res, err := c.Login(context.Background(), LoginRequest{
		Email: "a@b.com", Password: "pw", DeviceUniqueID: "device-1-2", DeviceModel: "adminauth/dev",
	})
	require.NoError(t, err)

	assert.Equal(t, &AuthResult{Token: "jwt-1", User: models.UserProfile{Name: "Ada", Role: "admin"}, Message: "Welcome back"}, res)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, PathLogin, got.path)
	assert.Equal(t, "device-1-2", got.header.Get("deviceuniqueid"))
	assert.Equal(t, "adminauth/dev", got.header.Get("devicemodel"))
	assert.Empty(t, got.header.Get("authorization"))
	assert.Equal(t, map[string]any{
		"email": "a@b.com", "password": "pw", "deviceuniqueid": "device-1-2", "devicemodel": "adminauth/dev",
	}, got.body)
}

func TestBearerTokenInjected(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"success":true,"message":"bye"}`, &got)
	c := NewHTTPClient(srv.URL)
	c.SetTokenSource(func() string { return "jwt-9" })

	msg, err := c.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bye", msg)
	assert.Equal(t, "Bearer jwt-9", got.header.Get("authorization"))
	assert.Equal(t, PathLogout, got.path)
	assert.Nil(t, got.body)
}

func TestRequestBodies(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(c *HTTPClient) error
		path string
		body map[string]any
	}{
		{
			name: "forgot",
			call: func(c *HTTPClient) error {
				_, err := c.ForgotPassword(ctx, ForgotPasswordRequest{Email: "a@b.com", Role: "admin"})
				return err
			},
			path: PathForgot,
			body: map[string]any{"email": "a@b.com", "role": "admin"},
		},
		{
			name: "verify",
			call: func(c *HTTPClient) error {
				_, err := c.VerifyOTP(ctx, VerifyOTPRequest{Email: "a@b.com", Role: "admin", OTP: "123456", DeviceUniqueID: "d", DeviceModel: "m"})
				return err
			},
			path: PathVerifyOTP,
			body: map[string]any{"email": "a@b.com", "role": "admin", "otp": "123456", "deviceuniqueid": "d", "devicemodel": "m"},
		},
		{
			name: "update password",
			call: func(c *HTTPClient) error {
				_, err := c.UpdatePassword(ctx, UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "New!1pass"})
				return err
			},
			path: PathUpdatePassword,
			body: map[string]any{"currentPassword": "old", "newPassword": "New!1pass"},
		},
		{
			name: "update password auth",
			call: func(c *HTTPClient) error {
				_, err := c.UpdatePasswordAuth(ctx, UpdatePasswordAuthRequest{NewPassword: "New!1pass"})
				return err
			},
			path: PathUpdatePasswordAuth,
			body: map[string]any{"newPassword": "New!1pass"},
		},
		{
			name: "register",
			call: func(c *HTTPClient) error {
				_, err := c.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "pw", Name: "Ada"})
				return err
			},
			path: PathRegister,
			body: map[string]any{"email": "a@b.com", "password": "pw", "name": "Ada"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got captured
			srv := newServer(t, http.StatusOK, `{"success":true,"data":{"token":"x","user":{"name":"n","role":"admin"}}}`, &got)
			require.NoError(t, tt.call(NewHTTPClient(srv.URL)))
			assert.Equal(t, tt.path, got.path)
			assert.Equal(t, tt.body, got.body)
		})
	}
}

func TestErrorMessagePreference(t *testing.T) {
	ctx := context.Background()

	t.Run("server message", func(t *testing.T) {
		srv := newServer(t, http.StatusBadRequest, `{"success":false,"message":"Invalid OTP"}`, nil)
		_, err := NewHTTPClient(srv.URL).VerifyOTP(ctx, VerifyOTPRequest{})
		var gerr *GatewayError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, http.StatusBadRequest, gerr.Status)
		assert.Equal(t, "Invalid OTP", gerr.Message)
		assert.Equal(t, "Invalid OTP", MessageOf(err))
	})

	t.Run("status text when body has no message", func(t *testing.T) {
		srv := newServer(t, http.StatusInternalServerError, `oops`, nil)
		_, err := NewHTTPClient(srv.URL).Logout(ctx)
		assert.Equal(t, "Request failed with status code 500", MessageOf(err))
	})

	t.Run("success false on 200", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"success":false,"message":"Email not found"}`, nil)
		_, err := NewHTTPClient(srv.URL).ForgotPassword(ctx, ForgotPasswordRequest{})
		assert.Equal(t, "Email not found", MessageOf(err))
	})

	t.Run("success false without message", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"success":false}`, nil)
		_, err := NewHTTPClient(srv.URL).ForgotPassword(ctx, ForgotPasswordRequest{})
		assert.Equal(t, "Something went wrong, Please try again!", MessageOf(err))
	})

	t.Run("undecodable 200", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `<html>`, nil)
		_, err := NewHTTPClient(srv.URL).ForgotPassword(ctx, ForgotPasswordRequest{})
		assert.Equal(t, "An unexpected error occurred", MessageOf(err))
	})
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url).Login(context.Background(), LoginRequest{})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.NotEmpty(t, MessageOf(err))
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	_, err := NewHTTPClient(srv.URL, WithTimeout(50*time.Millisecond)).Logout(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUnauthorized_WithTokenFiresHandler(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, `{"success":false,"message":"jwt expired"}`, nil)
	c := NewHTTPClient(srv.URL)
	c.SetTokenSource(func() string { return "stale" })

	var fired atomic.Int32
	c.OnUnauthorized(func(context.Context) { fired.Add(1) })

	_, err := c.UpdatePassword(context.Background(), UpdatePasswordRequest{})
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "jwt expired", MessageOf(err))
	assert.Equal(t, int32(1), fired.Load())
}

func TestUnauthorized_WithoutTokenDoesNotFire(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, `{"success":false,"message":"Invalid email or password"}`, nil)
	c := NewHTTPClient(srv.URL)

	var fired atomic.Int32
	c.OnUnauthorized(func(context.Context) { fired.Add(1) })

	_, err := c.Login(context.Background(), LoginRequest{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, errors.Is(err, ErrSessionExpired))
	assert.Zero(t, fired.Load())
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Equal(t, "An unexpected error occurred", MessageOf(errors.New("")))
}
