package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by RegisterFlags and ApplyFlags.
const (
	FlagConfig    = "config"
	FlagAddr      = "addr"
	FlagDatabase  = "db"
	FlagSecret    = "secret"
	FlagTokenTTL  = "token-ttl"
	FlagOTPTTL    = "otp-ttl"
	FlagSeedAdmin = "seed-admin"
	FlagLogLevel  = "log-level"
)

// RegisterFlags declares the gateway flags on fs with the built-in defaults.
//
//	-c, --config string       JSON config file
//	-a, --addr string         HTTP bind address (e.g. ":8080")
//	-d, --db string           SQLite DSN
//	-s, --secret string       JWT HMAC secret key
//	    --token-ttl duration  bearer token lifetime
//	    --otp-ttl duration    reset code lifetime
//	    --seed-admin string   email of the admin account created at start-up
//	-l, --log-level string    log level
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "JSON config file")
	fs.StringP(FlagAddr, "a", d.Addr, "address and port to run server")
	fs.StringP(FlagDatabase, "d", d.DatabaseDSN, "database DSN")
	fs.StringP(FlagSecret, "s", d.SecretKey, "secret key")
	fs.Duration(FlagTokenTTL, d.TokenTTL, "bearer token lifetime")
	fs.Duration(FlagOTPTTL, d.OTPTTL, "reset code lifetime")
	fs.String(FlagSeedAdmin, d.SeedAdminEmail, "email of the seeded admin account (empty to disable)")
	fs.StringP(FlagLogLevel, "l", d.LogLevel, "log level")
}

// ApplyFlags copies the flags the user actually set onto config, so that
// they take precedence over the JSON file.
func ApplyFlags(fs *pflag.FlagSet, config *Config) error {
	var err error
	if fs.Changed(FlagAddr) {
		if config.Addr, err = fs.GetString(FlagAddr); err != nil {
			return err
		}
	}
	if fs.Changed(FlagDatabase) {
		if config.DatabaseDSN, err = fs.GetString(FlagDatabase); err != nil {
			return err
		}
	}
	if fs.Changed(FlagSecret) {
		if config.SecretKey, err = fs.GetString(FlagSecret); err != nil {
			return err
		}
	}
	if fs.Changed(FlagTokenTTL) {
		if config.TokenTTL, err = fs.GetDuration(FlagTokenTTL); err != nil {
			return err
		}
	}
	if fs.Changed(FlagOTPTTL) {
		if config.OTPTTL, err = fs.GetDuration(FlagOTPTTL); err != nil {
			return err
		}
	}
	if fs.Changed(FlagSeedAdmin) {
		if config.SeedAdminEmail, err = fs.GetString(FlagSeedAdmin); err != nil {
			return err
		}
	}
	if fs.Changed(FlagLogLevel) {
		if config.LogLevel, err = fs.GetString(FlagLogLevel); err != nil {
			return err
		}
	}
	return nil
}
