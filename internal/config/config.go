package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Calendar collaborator
	CalendarBaseURL string
	CalendarAPIKey  string
	CalendarTimeout time.Duration

	// Email
	EmailProvider     string // "ses", "sendgrid" or "stub"
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
	AWSRegion         string

	// Scheduling policy
	Timezone           string
	WorkdayStart       string // "09:00"
	WorkdayEnd         string // "18:00"
	NonWorkingDays     []string
	SlotDuration       time.Duration
	SlotGranularity    time.Duration
	AlternativeWindow  int // days scanned for alternative slots
	AlternativeCount   int
	CancelTolerance    time.Duration
	SessionTTL         time.Duration
	HospitalName       string
	HospitalContact    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CalendarBaseURL: getEnv("CALENDAR_BASE_URL", ""),
		CalendarAPIKey:  getEnv("CALENDAR_API_KEY", ""),
		CalendarTimeout: getEnvAsDuration("CALENDAR_TIMEOUT", 20*time.Second),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", ""),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", ""),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),

		Timezone:          getEnv("CLINIC_TIMEZONE", "Asia/Kolkata"),
		WorkdayStart:      getEnv("WORKDAY_START", "09:00"),
		WorkdayEnd:        getEnv("WORKDAY_END", "18:00"),
		NonWorkingDays:    getEnvAsList("NON_WORKING_DAYS", []string{"Sunday"}),
		SlotDuration:      getEnvAsDuration("SLOT_DURATION", 30*time.Minute),
		SlotGranularity:   getEnvAsDuration("SLOT_GRANULARITY", 30*time.Minute),
		AlternativeWindow: getEnvAsInt("ALTERNATIVE_WINDOW_DAYS", 7),
		AlternativeCount:  getEnvAsInt("ALTERNATIVE_COUNT", 5),
		CancelTolerance:   getEnvAsDuration("CANCEL_TOLERANCE", 15*time.Minute),
		SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		HospitalName:      getEnv("HOSPITAL_NAME", "Renova Hospitals"),
		HospitalContact:   getEnv("HOSPITAL_CONTACT", "info@renovahospitals.com"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
