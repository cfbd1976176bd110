// Package config loads runtime configuration for the admin console client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c / -config or
//     $ADMINAUTH_CONFIG.
//  3. Environment variables prefixed with ADMINAUTH_ (see parseEnv). A .env
//     file in the working directory is loaded first if present.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the auth gateway
//	-t duration   gateway request timeout
//	-s string     credential store driver (sqlite, bolt, redis, memory)
//	-f string     credential store file
//	-l string     log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "2m" or
// integer nanoseconds. Every key is optional:
//
//	{
//	  "gateway_base_url": "https://auth.example.com",
//	  "gateway_timeout": "100s",
//	  "store_driver": "bolt",
//	  "store_path": "adminauth.bolt",
//	  "max_login_attempts": 5,
//	  "lockout_duration": "2m",
//	  "otp_expiry": "10m",
//	  "password_require_special": false
//	}
//
// The same names, upper-cased with the ADMINAUTH_ prefix, are read from the
// environment, e.g. ADMINAUTH_LOCKOUT_DURATION=5m.
package config
