package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	LogMode string

	DBDriver     string // postgres or sqlite
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSQLitePath string

	JWTKey string

	RedisURL            string
	QuizCacheTTLSeconds int

	MediaServiceURL string
	MediaServiceKey string

	OrderingMaxRetries int
	OrderingAuditCron  string // empty disables the audit job
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:    getEnv("PORT", "3000"),
		LogMode: getEnv("LOG_MODE", "development"),

		DBDriver:     getEnv("DB_DRIVER", "postgres"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", "slm"),
		DBSQLitePath: getEnv("DB_SQLITE_PATH", "slm.db"),

		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		RedisURL:            getEnv("REDIS_URL", ""),
		QuizCacheTTLSeconds: getEnvInt("QUIZ_CACHE_TTL_SECONDS", 300),

		MediaServiceURL: getEnv("MEDIA_SERVICE_URL", ""),
		MediaServiceKey: getEnv("MEDIA_SERVICE_KEY", ""),

		OrderingMaxRetries: getEnvInt("ORDERING_MAX_RETRIES", 3),
		OrderingAuditCron:  getEnv("ORDERING_AUDIT_CRON", "0 3 * * *"),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
