package config

import (
	"time"

	"github.com/joho/godotenv"
)

// DefaultRealmBaseURL is the production game web service.
const DefaultRealmBaseURL = "https://www.realmofthemadgod.com"

// Config holds the runtime configuration for stash-helper.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string

	// Realm web service
	RealmBaseURL      string
	RealmHTTPTimeout  time.Duration // zero means no timeout
	RequestsPerSecond int
	Burst             int
	RateLimitCooldown time.Duration

	// Optional shared cooldown store; empty RedisAddr keeps it in memory.
	RedisAddr string
	RedisDB   int
	RedisPass string

	// Launch and identity
	ExaltDir    string
	DeviceToken string

	// Settings location override; empty resolves the platform local app data dir.
	DataDir string

	// Credentials from AWS Secrets Manager
	AWSRegion  string
	SecretsEnv string
	CacheTTL   time.Duration

	// Local bridge for the UI shell
	BridgePort       int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:       GetEnv("SERVICE_NAME", "stash-helper"),
		Env:               GetEnv("ENV", "dev"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		RealmBaseURL:      GetEnv("REALM_BASE_URL", DefaultRealmBaseURL),
		RealmHTTPTimeout:  GetEnvDuration("REALM_HTTP_TIMEOUT", 0),
		RequestsPerSecond: GetEnvInt("REALM_REQUESTS_PER_SECOND", 2),
		Burst:             GetEnvInt("REALM_BURST", 2),
		RateLimitCooldown: GetEnvDuration("RATE_LIMIT_COOLDOWN", 5*time.Minute),
		RedisAddr:         GetEnv("REDIS_ADDR", ""),
		RedisDB:           GetEnvInt("REDIS_DB", 0),
		RedisPass:         GetEnv("REDIS_PASS", ""),
		ExaltDir:          GetEnv("EXALT_DIR", ""),
		DeviceToken:       GetEnv("DEVICE_TOKEN", "0"),
		DataDir:           GetEnv("STASH_DATA_DIR", ""),
		AWSRegion:         GetEnv("AWS_REGION", "us-east-2"),
		SecretsEnv:        GetEnv("SECRETS_ENV", "prod"),
		CacheTTL:          GetEnvDuration("CACHE_TTL", time.Hour),
		BridgePort:        GetEnvInt("BRIDGE_PORT", 9477),
		HTTPReadTimeout:   GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout:  GetEnvDuration("HTTP_WRITE_TIMEOUT", 2*time.Minute),
		HTTPIdleTimeout:   GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
	}
}
