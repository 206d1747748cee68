package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port       string
	Env        string
	CORSOrigin string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Auth
	JWTSecret          string
	JWTExpirationDur   time.Duration
	RefreshExpiration  time.Duration
	CookieSecure       bool
	LoginMaxFailures   int
	LoginLockoutWindow time.Duration

	// Profiles
	LatencyProfile  string
	NotificationTTL time.Duration
	SeedDemoData    bool
	ProfileIdle     time.Duration

	// CLI client
	APIURL      string
	ProfileHome string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "expensely"),
		DBPassword: getEnv("DB_PASSWORD", "expensely"),
		DBName:     getEnv("DB_NAME", "expensely"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "expensely.db"),

		JWTSecret:        getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		CookieSecure:     getBool("COOKIE_SECURE", false),
		LoginMaxFailures: getInt("LOGIN_MAX_FAILURES", 5),

		LatencyProfile: getEnv("LATENCY_PROFILE", "demo"),
		SeedDemoData:   getBool("SEED_DEMO_DATA", false),

		APIURL:      getEnv("API_URL", "http://localhost:8080/api/v1"),
		ProfileHome: getEnv("EXPENSELY_HOME", defaultProfileHome()),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 15*time.Minute)
	config.RefreshExpiration = getDuration("REFRESH_EXPIRES_IN", 7*24*time.Hour)
	config.LoginLockoutWindow = getDuration("LOGIN_LOCKOUT", 15*time.Minute)
	config.NotificationTTL = getDuration("NOTIFICATION_TTL", 3*time.Second)
	config.ProfileIdle = getDuration("PROFILE_IDLE_TIMEOUT", 30*time.Minute)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port '%s': must be a number", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER '%s': must be postgres or sqlite", c.DBDriver)
	}
	switch c.LatencyProfile {
	case "demo", "none":
	default:
		return fmt.Errorf("invalid LATENCY_PROFILE '%s': must be demo or none", c.LatencyProfile)
	}
	if c.LoginMaxFailures < 1 {
		return fmt.Errorf("invalid LOGIN_MAX_FAILURES %d: must be positive", c.LoginMaxFailures)
	}
	return nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func defaultProfileHome() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".expensely"
	}
	return filepath.Join(dir, "expensely")
}
