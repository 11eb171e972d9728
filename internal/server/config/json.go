package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/flagx"
	"github.com/dmitrijs2005/bienesraices/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	RedisAddr                    string         `json:"redis_addr"`
	ListingCacheTTL              timex.Duration `json:"listing_cache_ttl"`
	ResendAPIKey                 string         `json:"resend_api_key"`
	EmailSender                  string         `json:"email_sender"`
	PublicBaseURL                string         `json:"public_base_url"`
	AuthRateLimit                int            `json:"auth_rate_limit"`
	AuthRateBurst                int            `json:"auth_rate_burst"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c/--config command-line
// flag; if it is not set, no JSON file is loaded. If the file cannot be read
// or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.RedisAddr = c.RedisAddr
	config.ListingCacheTTL = time.Duration(c.ListingCacheTTL.Duration)
	config.ResendAPIKey = c.ResendAPIKey
	config.EmailSender = c.EmailSender
	config.PublicBaseURL = c.PublicBaseURL
	config.AuthRateLimit = c.AuthRateLimit
	config.AuthRateBurst = c.AuthRateBurst
}
