package config

import (
	"flag"

	"github.com/dmitrijs2005/adminauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     base URL of the auth gateway
//	-t duration   per-request gateway timeout
//	-s string     credential store driver (sqlite, bolt, redis, memory)
//	-f string     credential store file (sqlite, bolt)
//	-l string     log level (debug, info, warn, error)
//
// The args are filtered with flagx.FilterArgs first so that flags owned by
// other layers do not interfere.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-s", "-f", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GatewayBaseURL, "a", cfg.GatewayBaseURL, "base URL of the auth gateway")
	fs.DurationVar(&cfg.GatewayTimeout, "t", cfg.GatewayTimeout, "gateway request timeout")
	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "credential store driver")
	fs.StringVar(&cfg.StorePath, "f", cfg.StorePath, "credential store file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
