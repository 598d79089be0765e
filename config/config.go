package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataPath        string
	ApplicantsFile  string
	VolunteersFile  string
	BloodDrivesFile string
	DonorsFile      string

	BatchSize     int
	StorageDriver string
	MaxRetries    int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDB       string

	HTTPAddr        string
	RefreshInterval time.Duration
	WSPushInterval  time.Duration
	ArchiveDir      string

	AIProvider          string
	CloudflareAPIToken  string
	CloudflareAccountID string
	CloudflareModel     string
	GeminiAPIKey        string
	GeminiModel         string
	AIContextBudget     int
	AITimeout           time.Duration

	ChromeBin string
	LogLevel  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		DataPath:        getEnv("DATA_PATH", "./data"),
		ApplicantsFile:  getEnv("APPLICANTS_FILE", "Applicants 2025.csv"),
		VolunteersFile:  getEnv("VOLUNTEERS_FILE", "Volunteer 2025.csv"),
		BloodDrivesFile: getEnv("BLOOD_DRIVES_FILE", "Biomed.csv"),
		DonorsFile:      getEnv("DONORS_FILE", ">$5K donors past 12 months.csv"),

		BatchSize:     getEnvInt("BATCH_SIZE", 1000),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "none")),
		MaxRetries:    getEnvInt("MAX_RETRIES", 5),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "analytics"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "analytics"),
		PostgresDB:       getEnv("POSTGRES_DB", "executive_analytics"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MySQLHost:     getEnv("MYSQL_HOST", "localhost"),
		MySQLPort:     getEnv("MYSQL_PORT", "3306"),
		MySQLUser:     getEnv("MYSQL_USER", "analytics"),
		MySQLPassword: getEnv("MYSQL_PASSWORD", "analytics"),
		MySQLDB:       getEnv("MYSQL_DB", "executive_analytics"),

		HTTPAddr:        getEnv("HTTP_ADDR", ":5000"),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", time.Hour),
		WSPushInterval:  getEnvDuration("WS_PUSH_INTERVAL", 30*time.Second),
		ArchiveDir:      getEnv("ARCHIVE_DIR", ""),

		AIProvider:          strings.ToLower(getEnv("AI_PROVIDER", "cloudflare")),
		CloudflareAPIToken:  getEnv("CLOUDFLARE_API_TOKEN", ""),
		CloudflareAccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		CloudflareModel:     getEnv("CLOUDFLARE_AI_MODEL", "@cf/meta/llama-2-7b-chat-int8"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AIContextBudget:     getEnvInt("AI_CONTEXT_BUDGET", 2000),
		AITimeout:           getEnvDuration("AI_TIMEOUT", 30*time.Second),

		ChromeBin: getEnv("CHROME_BIN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// MySQLDSN returns the MySQL connection string.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
		c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDB)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
