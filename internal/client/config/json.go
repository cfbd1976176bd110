package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/flagx"
	"github.com/dmitrijs2005/adminauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so JSON can specify "2m" or integer nanoseconds; booleans
// are pointers so that an absent key keeps the earlier value.
type JsonConfig struct {
	GatewayBaseURL string          `json:"gateway_base_url"`
	GatewayTimeout *timex.Duration `json:"gateway_timeout"`

	StoreDriver string `json:"store_driver"`
	StorePath   string `json:"store_path"`
	RedisAddr   string `json:"redis_addr"`
	RedisPrefix string `json:"redis_prefix"`

	Role     string `json:"role"`
	LogLevel string `json:"log_level"`

	MaxLoginAttempts int             `json:"max_login_attempts"`
	LockoutDuration  *timex.Duration `json:"lockout_duration"`
	OTPLength        int             `json:"otp_length"`
	OTPExpiry        *timex.Duration `json:"otp_expiry"`

	PasswordMinLength      int   `json:"password_min_length"`
	PasswordRequireUpper   *bool `json:"password_require_upper"`
	PasswordRequireLower   *bool `json:"password_require_lower"`
	PasswordRequireNumbers *bool `json:"password_require_numbers"`
	PasswordRequireSpecial *bool `json:"password_require_special"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args or
// by $ADMINAUTH_CONFIG. Without either it is a no-op.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.GatewayBaseURL, jc.GatewayBaseURL)
	setDuration(&cfg.GatewayTimeout, jc.GatewayTimeout)

	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.StorePath, jc.StorePath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPrefix, jc.RedisPrefix)

	setString(&cfg.Role, jc.Role)
	setString(&cfg.LogLevel, jc.LogLevel)

	setInt(&cfg.MaxLoginAttempts, jc.MaxLoginAttempts)
	setDuration(&cfg.LockoutDuration, jc.LockoutDuration)
	setInt(&cfg.OTPLength, jc.OTPLength)
	setDuration(&cfg.OTPExpiry, jc.OTPExpiry)

	setInt(&cfg.PasswordMinLength, jc.PasswordMinLength)
	setBool(&cfg.PasswordRequireUpper, jc.PasswordRequireUpper)
	setBool(&cfg.PasswordRequireLower, jc.PasswordRequireLower)
	setBool(&cfg.PasswordRequireNumbers, jc.PasswordRequireNumbers)
	setBool(&cfg.PasswordRequireSpecial, jc.PasswordRequireSpecial)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
