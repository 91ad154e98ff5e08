// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the gophauth server. It is loaded once at
// start-up and treated as read-only afterwards.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - MetricsAddr: bind address for the Prometheus /metrics listener; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory account store.
//   - SecretKey: HMAC secret for signing tokens (HS256). Required.
//   - AccessTokenValidityDuration: token lifetime.
//   - TokenLeeway: clock skew tolerated when checking token expiry.
//   - BcryptCost: work factor of the password hash.
//   - MaxConcurrentHashes: upper bound on simultaneous hash computations.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC            string
	MetricsAddr                 string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	TokenLeeway                 time.Duration
	BcryptCost                  int
	MaxConcurrentHashes         int
	LogLevel                    string
}

// minSecretLength is the shortest signing secret Validate accepts.
const minSecretLength = 16

// LoadDefaults populates Config with development defaults. There is no
// default signing secret.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.MetricsAddr = ":9090"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 5 * time.Minute
	c.TokenLeeway = 0
	c.BcryptCost = 12
	c.MaxConcurrentHashes = runtime.NumCPU()
	c.LogLevel = "info"
}

// Validate reports configuration that the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("grpc address is required"))
	}
	if len(c.SecretKey) < minSecretLength {
		errs = append(errs, fmt.Errorf("secret key must be at least %d bytes", minSecretLength))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.TokenLeeway < 0 {
		errs = append(errs, errors.New("token leeway cannot be negative"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.MaxConcurrentHashes < 1 {
		errs = append(errs, errors.New("max concurrent hashes must be at least 1"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
