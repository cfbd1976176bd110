// Package common contains shared constants, sentinel errors and small helpers
// used by both the admin console client and the development gateway.
package common

// Header names understood by the auth gateway.
const (
	AuthorizationHeaderName  = "authorization"
	DeviceUniqueIDHeaderName = "deviceuniqueid"
	DeviceModelHeaderName    = "devicemodel"

	BearerPrefix = "Bearer "
)

// Keys of the persisted credential record.
const (
	KeyAuthToken      = "authToken"
	KeyUserData       = "userData"
	KeyLoginAttempts  = "loginAttempts"
	KeyLockedUntil    = "lockedUntil"
	KeyOTPTimerExpiry = "otp_timer_expiry"
)

// DefaultRole is the role every admin console request is issued for.
const DefaultRole = "admin"
