package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port           string
	AllowedOrigins string

	// Database; empty keeps history and snapshots in memory
	DatabaseURL string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Environment
	Environment string
	LogLevel    string

	// Gemini command parser; empty key means fallback parsing only
	GeminiAPIKey  string
	GeminiModel   string
	ParserTimeout time.Duration

	// S3/Garage dataset storage; empty access key means embedded datasets
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	S3Region       string
	DatasetsPrefix string

	// Voice pipeline
	DefaultLanguage string
	SearchCacheSize int
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "*"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production-please"),
		JWTExpiry:       getDurationEnv("JWT_EXPIRY_HOURS", 24*30) * time.Hour,
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ParserTimeout:   getDurationEnv("PARSER_TIMEOUT_SECONDS", 12) * time.Second,
		S3Endpoint:      getEnv("S3_ENDPOINT", "localhost:3900"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Bucket:        getEnv("S3_BUCKET", "shopvoice"),
		S3UseSSL:        getBoolEnv("S3_USE_SSL", false),
		S3Region:        getEnv("S3_REGION", "garage"),
		DatasetsPrefix:  getEnv("DATASETS_PREFIX", "datasets"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en-US"),
		SearchCacheSize: getIntEnv("SEARCH_CACHE_SIZE", 256),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
	}
	return time.Duration(defaultValue)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDatabase reports whether Postgres persistence is configured
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

// UsesDatasetBucket reports whether datasets are loaded from S3
func (c *Config) UsesDatasetBucket() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}
