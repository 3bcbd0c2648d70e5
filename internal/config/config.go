package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Keys KeyPrefixes

	LoginCodeTTL   time.Duration
	LoginTokenTTL  time.Duration
	NicknamePrefix string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SNSRegion      string
	SMSEnabled     bool
	SMSCountryCode string // prepended to the local phone number to form E.164
	LogCodes       bool   // log issued codes when SMS is disabled (local development)

	AllowedOrigins []string // CORS allowed origins
	CodeRateLimit  float64  // requests/second per IP on code and login endpoints
	CodeRateBurst  int
	TrustedProxies []string // peers whose X-Forwarded-For / X-Real-Ip are believed
}

// KeyPrefixes are prepended to every Redis key the services write.
type KeyPrefixes struct {
	Code  string
	Token string
	Sign  string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:       getEnv("APP_PORT", "8081"),
		AppEnv:        getEnv("APP_ENV", "development"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		Keys: KeyPrefixes{
			Code:  getEnv("KEY_PREFIX_CODE", "login:code:"),
			Token: getEnv("KEY_PREFIX_TOKEN", "login:token:"),
			Sign:  getEnv("KEY_PREFIX_SIGN", "sign:"),
		},
		LoginCodeTTL:   getEnvDuration("LOGIN_CODE_TTL", 2*time.Minute),
		LoginTokenTTL:  getEnvDuration("LOGIN_TOKEN_TTL", 30*time.Minute),
		NicknamePrefix: getEnv("NICKNAME_PREFIX", "user_"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users: getEnv("DYNAMO_TABLE_USERS", "users"),
		},
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		SMSEnabled:     getEnvBool("SMS_ENABLED", false),
		SMSCountryCode: getEnv("SMS_COUNTRY_CODE", "+86"),
		LogCodes:       getEnvBool("LOG_VERIFICATION_CODES", false),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		CodeRateLimit:  getEnvFloat("CODE_RATE_LIMIT", 1),
		CodeRateBurst:  getEnvInt("CODE_RATE_BURST", 3),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
	}
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("90s", "2m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
