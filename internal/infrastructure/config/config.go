// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI          string
	MongoDB           string
	MongoUser         string
	MongoPassword     string
	MongoTransactions bool
	PassCollection    string

	// PostgreSQL pass event ledger, disabled when empty
	PostgresURI string

	// Reminder job
	CronSecret         string
	ReminderSchedule   string
	ReminderWindowDays int

	// Gmail
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string

	// WhatsApp
	WhatsAppEndpoint  string
	WhatsAppToken     string
	WhatsAppCompanyID string
	WhatsAppAgentID   string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:          getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGO_DB", "ticpin"),
		MongoUser:         getEnv("MONGO_USER", ""),
		MongoPassword:     getEnv("MONGO_PASSWORD", ""),
		MongoTransactions: getEnvAsBool("MONGO_TRANSACTIONS", false),
		PassCollection:    getEnv("PASS_COLLECTION", "ticpin_pass_users"),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		CronSecret:         getEnv("CRON_SECRET", ""),
		ReminderSchedule:   os.Getenv("REMINDER_SCHEDULE"),
		ReminderWindowDays: getEnvAsInt("REMINDER_WINDOW_DAYS", 7),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),

		WhatsAppEndpoint:  getEnv("WHATSAPP_SERVICE_URL", ""),
		WhatsAppToken:     getEnv("TOKEN", ""),
		WhatsAppCompanyID: getEnv("COMPANY_ID", ""),
		WhatsAppAgentID:   getEnv("AGENT_ID", ""),
	}

	if _, set := os.LookupEnv("REMINDER_SCHEDULE"); !set {
		config.ReminderSchedule = "0 0 9 * * *"
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
