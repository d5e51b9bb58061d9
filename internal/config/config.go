package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultCRMEndpoint = "https://crm.legendmotors.ae/RESTAPIDealerShip/RESTAPI_WEB"

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// CRM gateway
	CRMEndpoint           string
	CRMTimeout            time.Duration
	CRMCompanyCode        string
	CRMCompanyID          string
	CRMDealershipID       string
	CRMLeadSourceID       string
	CRMDefaultModel       string
	CRMDeadLetterQueueURL string

	// Storage
	LeadStore     string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// HTTP surface
	SubmitRatePerMinute int
	CORSAllowedOrigins  []string

	// Admin session
	AdminJWTSecret    string
	AdminUsername     string
	AdminPassword     string
	AdminTokenTTL     time.Duration
	AdminCookieSecure bool

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CRMEndpoint:           getEnv("CRM_ENDPOINT", defaultCRMEndpoint),
		CRMTimeout:            getEnvAsDuration("CRM_TIMEOUT", 30*time.Second),
		CRMCompanyCode:        getEnv("CRM_COMPANY_CODE", "Skywell"),
		CRMCompanyID:          getEnv("CRM_COMPANY_ID", ""),
		CRMDealershipID:       getEnv("CRM_DEALERSHIP_ID", ""),
		CRMLeadSourceID:       getEnv("CRM_LEAD_SOURCE_ID", "Website"),
		CRMDefaultModel:       getEnv("CRM_DEFAULT_MODEL", "General Enquiry"),
		CRMDeadLetterQueueURL: getEnv("CRM_DEAD_LETTER_QUEUE_URL", ""),

		LeadStore:     strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", "memory"))),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "skywell"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SubmitRatePerMinute: getEnvAsInt("SUBMIT_RATE_PER_MINUTE", 20),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		AdminJWTSecret:    getEnv("ADMIN_JWT_SECRET", ""),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminTokenTTL:     getEnvAsDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		AdminCookieSecure: getEnvAsBool("ADMIN_COOKIE_SECURE", true),

		AWSRegion:           getEnv("AWS_REGION", "me-central-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
