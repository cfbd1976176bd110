package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/adminauth/internal/common"
	"github.com/dmitrijs2005/adminauth/internal/server/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type forgotRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	OTP   string `json:"otp"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userView struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}

type sessionData struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type userData struct {
	User userView `json:"user"`
}

func viewOf(u *models.User) userView {
	return userView{Name: u.Name, Role: u.Role, Email: u.Email}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	s.logger.Debug(r.Context(), "login request",
		"device_id", r.Header.Get(common.DeviceUniqueIDHeaderName),
		"device_model", r.Header.Get(common.DeviceModelHeaderName))

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "Login successful", sessionData{Token: sess.Token, User: viewOf(sess.User)})
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "User registered successfully", userData{User: viewOf(u)})
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), claimsFrom(r.Context())); err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "Logged out successfully", nil)
}

func (s *HTTPServer) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.users.ForgotPassword(r.Context(), req.Email, req.Role); err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "OTP sent to your email", nil)
}

func (s *HTTPServer) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := s.users.VerifyOTP(r.Context(), req.Email, req.Role, req.OTP)
	if err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "OTP verified", sessionData{Token: sess.Token, User: viewOf(sess.User)})
}

func (s *HTTPServer) updatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	claims := claimsFrom(r.Context())
	if err := s.users.UpdatePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "Password updated successfully", nil)
}

func (s *HTTPServer) updatePasswordAuth(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.users.UpdatePasswordAuth(r.Context(), claimsFrom(r.Context()), req.NewPassword); err != nil {
		s.mapError(w, r, err)
		return
	}
	writeOK(w, "Password reset successfully", nil)
}
