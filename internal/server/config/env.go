package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr            = "GOPHAUTH_GRPC_ADDR"
	EnvMetricsAddr         = "GOPHAUTH_METRICS_ADDR"
	EnvDatabaseDSN         = "GOPHAUTH_DATABASE_DSN"
	EnvSecretKey           = "GOPHAUTH_SECRET_KEY"
	EnvTokenTTL            = "GOPHAUTH_TOKEN_TTL"
	EnvTokenLeeway         = "GOPHAUTH_TOKEN_LEEWAY"
	EnvBcryptCost          = "GOPHAUTH_BCRYPT_COST"
	EnvMaxConcurrentHashes = "GOPHAUTH_MAX_CONCURRENT_HASHES"
	EnvLogLevel            = "GOPHAUTH_LOG_LEVEL"
	EnvConfigFile          = "GOPHAUTH_CONFIG"
)

// parseEnv overlays set environment variables onto config. Durations use
// time.ParseDuration syntax. Malformed values panic, like the other sources.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(EnvGRPCAddr); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := os.LookupEnv(EnvMetricsAddr); ok {
		config.MetricsAddr = v
	}
	if v, ok := os.LookupEnv(EnvDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		config.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvTokenTTL); ok {
		config.AccessTokenValidityDuration = mustDuration(EnvTokenTTL, v)
	}
	if v, ok := os.LookupEnv(EnvTokenLeeway); ok {
		config.TokenLeeway = mustDuration(EnvTokenLeeway, v)
	}
	if v, ok := os.LookupEnv(EnvBcryptCost); ok {
		config.BcryptCost = mustInt(EnvBcryptCost, v)
	}
	if v, ok := os.LookupEnv(EnvMaxConcurrentHashes); ok {
		config.MaxConcurrentHashes = mustInt(EnvMaxConcurrentHashes, v)
	}
}

func mustDuration(name, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return d
}

func mustInt(name, v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return n
}
