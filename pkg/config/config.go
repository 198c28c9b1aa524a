package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the trading core.
type Config struct {
	Port string

	// Lock manager
	LockManagerTotalNativeLamports uint64
	LockTTLDefaultMs               int64
	LockSweepIntervalMs            int64

	// Fairness policy
	FairnessMinTierPriority     int
	FairnessHalfTTLAgedMs       int64
	FairnessMaxConcurrentOrigin int

	// Router / quote
	RouterQuoteTimeoutMs int64
	DefaultSlippageBps   int64

	// Audit (ipc)
	AuditStem     string
	AuditDir      string
	ReplayIntents string
	ReplayOutput  string

	// 6005 bonding-curve-complete retry policy
	Retry6005TimeoutMs int64

	// RPC rate limiting
	RPCRateLimitPerSec float64
	RPCRateBurst       int

	// Admin surface
	AdminEnabled bool
	AdminPort    string

	// Execution toggle
	DryRun bool
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		LockManagerTotalNativeLamports: getEnvUint64("LOCK_TOTAL_NATIVE_LAMPORTS", 10_000_000_000),
		LockTTLDefaultMs:               getEnvInt64("LOCK_TTL_DEFAULT_MS", 30_000),
		LockSweepIntervalMs:            getEnvInt64("LOCK_SWEEP_INTERVAL_MS", 1_000),

		FairnessMinTierPriority:     getEnvInt("FAIRNESS_MIN_TIER_PRIORITY", 0),
		FairnessHalfTTLAgedMs:       getEnvInt64("FAIRNESS_HALF_TTL_AGED_MS", 15_000),
		FairnessMaxConcurrentOrigin: getEnvInt("FAIRNESS_MAX_CONCURRENT_ORIGIN", 3),

		RouterQuoteTimeoutMs: getEnvInt64("ROUTER_QUOTE_TIMEOUT_MS", 800),
		DefaultSlippageBps:   getEnvInt64("DEFAULT_SLIPPAGE_BPS", 50),

		AuditStem:     getEnv("AUDIT_STEM", "audit"),
		AuditDir:      getEnv("AUDIT_DIR", "./data/audit"),
		ReplayIntents: getEnv("REPLAY_INTENTS_PATH", ""),
		ReplayOutput:  getEnv("REPLAY_OUTPUT_PATH", ""),

		Retry6005TimeoutMs: getEnvInt64("RETRY_6005_TIMEOUT_MS", 5_000),

		RPCRateLimitPerSec: getEnvFloat("RPC_RATE_LIMIT_PER_SEC", 40.0),
		RPCRateBurst:       getEnvInt("RPC_RATE_BURST", 10),

		AdminEnabled: getEnv("ADMIN_ENABLED", "true") == "true",
		AdminPort:    getEnv("ADMIN_PORT", "9090"),

		DryRun: getEnv("DRY_RUN", "true") == "true",
	}, nil
}

// LockTTLDefault returns the configured default TTL as a duration.
func (c *Config) LockTTLDefault() time.Duration {
	return time.Duration(c.LockTTLDefaultMs) * time.Millisecond
}

// LockSweepInterval returns the configured sweep interval as a duration.
func (c *Config) LockSweepInterval() time.Duration {
	return time.Duration(c.LockSweepIntervalMs) * time.Millisecond
}

// Retry6005Timeout returns the bounded retry window for 6005 errors.
func (c *Config) Retry6005Timeout() time.Duration {
	return time.Duration(c.Retry6005TimeoutMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getEnvUint64(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}
