package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/lockout"
	"github.com/dmitrijs2005/adminauth/internal/client/password"
	"github.com/dmitrijs2005/adminauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adminauth/internal/common"
)

// Config holds runtime settings for the admin console client.
//
// Units: all durations are time.Duration values.
type Config struct {
	GatewayBaseURL string
	GatewayTimeout time.Duration

	StoreDriver string
	StorePath   string
	RedisAddr   string
	RedisPrefix string

	Role     string
	LogLevel string

	MaxLoginAttempts int
	LockoutDuration  time.Duration
	OTPLength        int
	OTPExpiry        time.Duration

	PasswordMinLength      int
	PasswordRequireUpper   bool
	PasswordRequireLower   bool
	PasswordRequireNumbers bool
	PasswordRequireSpecial bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.GatewayBaseURL = "http://localhost:8080"
	c.GatewayTimeout = 100 * time.Second

	c.StoreDriver = metadata.DriverSQLite
	c.StorePath = "adminauth.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "adminauth"

	c.Role = common.DefaultRole
	c.LogLevel = "info"

	p := lockout.DefaultPolicy()
	c.MaxLoginAttempts = p.MaxLoginAttempts
	c.LockoutDuration = p.LockoutDuration
	c.OTPLength = p.OTPLength
	c.OTPExpiry = p.OTPExpiry

	pp := password.DefaultPolicy()
	c.PasswordMinLength = pp.MinLength
	c.PasswordRequireUpper = pp.RequireUpper
	c.PasswordRequireLower = pp.RequireLower
	c.PasswordRequireNumbers = pp.RequireNumbers
	c.PasswordRequireSpecial = pp.RequireSpecial
}

// Load builds a Config from defaults, then the JSON file, then the
// environment (and .env), then the flags found in args. Later sources take
// precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on malformed input.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// LockoutPolicy returns the login and OTP limits.
func (c *Config) LockoutPolicy() lockout.Policy {
	return lockout.Policy{
		MaxLoginAttempts: c.MaxLoginAttempts,
		LockoutDuration:  c.LockoutDuration,
		OTPLength:        c.OTPLength,
		OTPExpiry:        c.OTPExpiry,
	}.Normalize()
}

// PasswordPolicy returns the new-password rules.
func (c *Config) PasswordPolicy() password.Policy {
	return password.Policy{
		MinLength:      c.PasswordMinLength,
		RequireUpper:   c.PasswordRequireUpper,
		RequireLower:   c.PasswordRequireLower,
		RequireNumbers: c.PasswordRequireNumbers,
		RequireSpecial: c.PasswordRequireSpecial,
	}
}

// StoreOptions selects the credential store backend.
func (c *Config) StoreOptions() metadata.Options {
	return metadata.Options{
		Driver:      c.StoreDriver,
		Path:        c.StorePath,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
	}
}
