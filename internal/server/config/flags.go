package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address (empty disables the listener)
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      access token validity, minutes
//	-l int      token expiry leeway, seconds
//	-b int      bcrypt cost
//	-w int      max concurrent password hashes
//	-v string   log level
//
// The function first picks only the flags it recognizes out of os.Args with
// flagx.Pick, so the -c/-config flag does not collide.
func parseFlags(config *Config) {
	args := flagx.Pick(os.Args[1:], "a", "m", "d", "s", "t", "l", "b", "w", "v")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for /metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	tokenLeeway := fs.Int("l", int(config.TokenLeeway.Seconds()), "token expiry leeway (in seconds)")

	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.MaxConcurrentHashes, "w", config.MaxConcurrentHashes, "max concurrent password hashes")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// durations only change when given explicitly, so sub-minute values from
	// JSON or the environment survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "l":
			config.TokenLeeway = time.Duration(*tokenLeeway) * time.Second
		}
	})
}
