package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every setting name, e.g. ADMINAUTH_GATEWAY_BASE_URL.
const EnvPrefix = "ADMINAUTH"

var envKeys = []string{
	"gateway_base_url", "gateway_timeout",
	"store_driver", "store_path", "redis_addr", "redis_prefix",
	"role", "log_level",
	"max_login_attempts", "lockout_duration", "otp_length", "otp_expiry",
	"password_min_length", "password_require_upper", "password_require_lower",
	"password_require_numbers", "password_require_special",
}

// parseEnv overlays cfg with ADMINAUTH_* variables. envFile, when it exists,
// is loaded first; variables already set in the process win over it.
func parseEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	if v.IsSet("gateway_base_url") {
		cfg.GatewayBaseURL = v.GetString("gateway_base_url")
	}
	if v.IsSet("gateway_timeout") {
		cfg.GatewayTimeout = v.GetDuration("gateway_timeout")
	}
	if v.IsSet("store_driver") {
		cfg.StoreDriver = v.GetString("store_driver")
	}
	if v.IsSet("store_path") {
		cfg.StorePath = v.GetString("store_path")
	}
	if v.IsSet("redis_addr") {
		cfg.RedisAddr = v.GetString("redis_addr")
	}
	if v.IsSet("redis_prefix") {
		cfg.RedisPrefix = v.GetString("redis_prefix")
	}
	if v.IsSet("role") {
		cfg.Role = v.GetString("role")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("max_login_attempts") {
		cfg.MaxLoginAttempts = v.GetInt("max_login_attempts")
	}
	if v.IsSet("lockout_duration") {
		cfg.LockoutDuration = v.GetDuration("lockout_duration")
	}
	if v.IsSet("otp_length") {
		cfg.OTPLength = v.GetInt("otp_length")
	}
	if v.IsSet("otp_expiry") {
		cfg.OTPExpiry = v.GetDuration("otp_expiry")
	}
	if v.IsSet("password_min_length") {
		cfg.PasswordMinLength = v.GetInt("password_min_length")
	}
	if v.IsSet("password_require_upper") {
		cfg.PasswordRequireUpper = v.GetBool("password_require_upper")
	}
	if v.IsSet("password_require_lower") {
		cfg.PasswordRequireLower = v.GetBool("password_require_lower")
	}
	if v.IsSet("password_require_numbers") {
		cfg.PasswordRequireNumbers = v.GetBool("password_require_numbers")
	}
	if v.IsSet("password_require_special") {
		cfg.PasswordRequireSpecial = v.GetBool("password_require_special")
	}
	return nil
}
