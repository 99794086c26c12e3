package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":3000"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DevMode     bool   // true => in-memory store, no Redis required
	CatalogFile string // optional yaml file overriding code words/units/categories

	MessageRetention int           // messages kept per coloc chat log
	TrimInterval     time.Duration // interval between chat-log trim passes

	// Rate limit on coloc creation (the code space is finite)
	CreateBurst  int // burst of creations allowed per IP
	CreatePerMin int // sustained creations per IP per minute

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts
}

func Load() *Config {
	devMode := mustBool("COLOC_DEV_MODE", false)

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("COLOC_LISTEN_PORT", ":3000"),
		ShutdownTimeout: mustDuration("COLOC_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("COLOC_LOG_LEVEL", "info"),
		PrettyLog: mustBool("COLOC_PRETTY_LOG", true),

		DevMode:     devMode,
		CatalogFile: getenv("COLOC_CATALOG_FILE", ""), // Optional, empty = built-in catalog

		MessageRetention: getenvInt("COLOC_MESSAGE_RETENTION", 200),
		TrimInterval:     mustDuration("COLOC_TRIM_INTERVAL", 10*time.Minute),

		CreateBurst:  getenvInt("COLOC_CREATE_BURST", 5),
		CreatePerMin: getenvInt("COLOC_CREATE_PER_MIN", 2),

		// Redis settings (ignored in dev mode)
		RedisAddr:             getenv("COLOC_REDIS_ADDR", ""),
		RedisUser:             getenv("COLOC_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("COLOC_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("COLOC_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("COLOC_REDIS_DB", 0),
		RedisDT:               mustDuration("COLOC_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("COLOC_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("COLOC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("COLOC_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("COLOC_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("COLOC_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("COLOC_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("COLOC_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("COLOC_REDIS_WARN_THRESHOLD", 3),
	}

	if !cfg.DevMode && cfg.RedisAddr == "" {
		panic("❌ FATAL: COLOC_REDIS_ADDR is required unless COLOC_DEV_MODE=true")
	}
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: COLOC_REDIS_PASSWORD is required when COLOC_REDIS_PASSWORD_REQUIRED=true")
	}
	if cfg.MessageRetention < 50 {
		// The API always serves the 50 most recent messages; never retain less.
		cfg.MessageRetention = 50
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
