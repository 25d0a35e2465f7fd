package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	platformstrings "kycreview/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server Server
	Remote Remote
	Redis  RedisConfig
	Cache  Cache
	Audit  Audit
	Log    Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	AdminToken string
	// AdminTokenHash is a bcrypt hash of the admin token and wins over AdminToken.
	AdminTokenHash string
	RequestTimeout time.Duration
	// ListPath is where the workflow navigates after a successful decision.
	ListPath string
}

// Remote configures the upstream KYC authority.
type Remote struct {
	BaseURL string
	Timeout time.Duration
	// StaticToken is sent as-is when set; otherwise a service JWT is minted.
	StaticToken     string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	JWTTTL          time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
}

// RedisConfig configures the optional invalidation bus. An empty URL disables it.
type RedisConfig struct {
	URL          string
	Channel      string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Cache tunes the query cache. A zero MaxAge keeps list results until a
// decision invalidates them.
type Cache struct {
	MaxAge time.Duration
}

// Audit selects where review decisions are recorded.
type Audit struct {
	Sink         string // memory, postgres, kafka
	PostgresDSN  string
	KafkaBrokers []string
	KafkaTopic   string
	AsyncBuffer  int
}

// Log configures the slog handler.
type Log struct {
	Format string
	Level  string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env file: %v", err)
	}
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:           GetEnv("KYCREVIEW_ADDR", ":8080"),
			AdminToken:     GetEnv("ADMIN_TOKEN", ""),
			AdminTokenHash: GetEnv("ADMIN_TOKEN_HASH", ""),
			RequestTimeout: GetDurationEnv("REQUEST_TIMEOUT", 30*time.Second),
			ListPath:       GetEnv("KYC_LIST_PATH", "/kyc"),
		},
		Remote: Remote{
			BaseURL:         strings.TrimRight(GetEnv("KYC_API_BASE_URL", "http://localhost:5000/api"), "/"),
			Timeout:         GetDurationEnv("KYC_API_TIMEOUT", 15*time.Second),
			StaticToken:     GetEnv("KYC_API_TOKEN", ""),
			JWTSigningKey:   GetEnv("KYC_API_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:       GetEnv("KYC_API_JWT_ISSUER", "kycreview"),
			JWTAudience:     GetEnv("KYC_API_JWT_AUDIENCE", "kyc-api"),
			JWTTTL:          GetDurationEnv("KYC_API_JWT_TTL", 5*time.Minute),
			BreakerFailures: GetIntEnv("KYC_API_BREAKER_FAILURES", 5),
			BreakerCooldown: GetDurationEnv("KYC_API_BREAKER_COOLDOWN", 10*time.Second),
		},
		Redis: RedisConfig{
			URL:          GetEnv("REDIS_URL", ""),
			Channel:      GetEnv("REDIS_INVALIDATION_CHANNEL", "kycreview:invalidate"),
			PoolSize:     GetIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: GetIntEnv("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  GetDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  GetDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: GetDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Cache: Cache{
			MaxAge: GetDurationEnv("CACHE_MAX_AGE", 0),
		},
		Audit: Audit{
			Sink:         strings.ToLower(GetEnv("AUDIT_SINK", "memory")),
			PostgresDSN:  GetEnv("AUDIT_POSTGRES_DSN", ""),
			KafkaBrokers: splitList(GetEnv("AUDIT_KAFKA_BROKERS", "")),
			KafkaTopic:   GetEnv("AUDIT_KAFKA_TOPIC", "kyc.review.decisions"),
			AsyncBuffer:  GetIntEnv("AUDIT_ASYNC_BUFFER", 0),
		},
		Log: Log{
			Format: GetEnv("LOG_FORMAT", "json"),
			Level:  GetEnv("LOG_LEVEL", "info"),
		},
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
