// Package config handles configuration for the development gateway,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development gateway.
//
// Fields:
//   - Addr: bind address of the HTTP listener.
//   - DatabaseDSN: SQLite DSN; ":memory:" keeps accounts for the process lifetime.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenTTL: lifetime of issued bearer tokens.
//   - OTPTTL / OTPLength: lifetime and number of digits of reset codes.
//   - SeedAdminEmail / SeedAdminPassword / SeedAdminName: account created at
//     start-up; empty email disables seeding.
//   - LogLevel: slog level name.
type Config struct {
	Addr              string
	DatabaseDSN       string
	SecretKey         string
	TokenTTL          time.Duration
	OTPTTL            time.Duration
	OTPLength         int
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string
	LogLevel          string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = ":memory:"
	c.SecretKey = "secretKey"
	c.TokenTTL = 1 * time.Hour
	c.OTPTTL = 10 * time.Minute
	c.OTPLength = 6
	c.SeedAdminEmail = "admin@example.com"
	c.SeedAdminPassword = "Admin123!"
	c.SeedAdminName = "Admin"
	c.LogLevel = "info"
}

// Load builds a Config by applying defaults and then overlaying values from
// the JSON file at path, if path is not empty. Flags are applied separately
// with ApplyFlags.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
