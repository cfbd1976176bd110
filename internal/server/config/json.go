package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/adminauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for lifetimes, which allows parsing both string
// values such as "10m" and integer nanoseconds.
//
// Only keys present in the file override the earlier values.
type JsonConfig struct {
	Addr              string          `json:"addr"`
	DatabaseDSN       string          `json:"database_dsn"`
	SecretKey         string          `json:"secret_key"`
	TokenTTL          *timex.Duration `json:"token_ttl"`
	OTPTTL            *timex.Duration `json:"otp_ttl"`
	OTPLength         int             `json:"otp_length"`
	SeedAdminEmail    *string         `json:"seed_admin_email"`
	SeedAdminPassword string          `json:"seed_admin_password"`
	SeedAdminName     string          `json:"seed_admin_name"`
	LogLevel          string          `json:"log_level"`
}

// parseJson loads configuration values from the JSON file at path into
// config. An empty path is a no-op.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.OTPTTL != nil {
		config.OTPTTL = c.OTPTTL.Duration
	}
	if c.OTPLength != 0 {
		config.OTPLength = c.OTPLength
	}
	if c.SeedAdminEmail != nil {
		config.SeedAdminEmail = *c.SeedAdminEmail
	}
	if c.SeedAdminPassword != "" {
		config.SeedAdminPassword = c.SeedAdminPassword
	}
	if c.SeedAdminName != "" {
		config.SeedAdminName = c.SeedAdminName
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	return nil
}
