package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from the environment. A .env file in the
// working directory is loaded first, if present; real environment variables
// win over it (godotenv does not override existing values).
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setEnvString(&config.EndpointAddrHTTP, "BR_ADDRESS")
	setEnvString(&config.DatabaseDSN, "BR_DATABASE_DSN")
	setEnvString(&config.SecretKey, "BR_SECRET_KEY")
	setEnvDuration(&config.SessionTokenValidityDuration, "BR_SESSION_TOKEN_VALIDITY")
	setEnvString(&config.S3RootUser, "BR_S3_ROOT_USER")
	setEnvString(&config.S3RootPassword, "BR_S3_ROOT_PASSWORD")
	setEnvString(&config.S3Bucket, "BR_S3_BUCKET")
	setEnvString(&config.S3Region, "BR_S3_REGION")
	setEnvString(&config.S3BaseEndpoint, "BR_S3_BASE_ENDPOINT")
	setEnvString(&config.RedisAddr, "BR_REDIS_ADDR")
	setEnvDuration(&config.ListingCacheTTL, "BR_LISTING_CACHE_TTL")
	setEnvString(&config.ResendAPIKey, "BR_RESEND_API_KEY")
	setEnvString(&config.EmailSender, "BR_EMAIL_SENDER")
	setEnvString(&config.PublicBaseURL, "BR_PUBLIC_BASE_URL")
	setEnvInt(&config.AuthRateLimit, "BR_AUTH_RATE_LIMIT")
	setEnvInt(&config.AuthRateBurst, "BR_AUTH_RATE_BURST")
}

func setEnvString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setEnvInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setEnvDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
