package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Razorpay RazorpayConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Env     string // "development" or "production"
	Name    string
	LogoURL string
}

type APIConfig struct {
	BaseURL          string
	Timeout          time.Duration
	TokenWaitTimeout time.Duration
}

type RazorpayConfig struct {
	KeyID       string
	Environment string // "test" or "live"
	CallbackAdr string // loopback address for the checkout callback server
}

type StorageConfig struct {
	Path string // local state database file
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		App: AppConfig{
			Env:     getEnv("ENV", "development"),
			Name:    getEnv("APP_NAME", "Local Konnect"),
			LogoURL: getEnv("APP_LOGO_URL", "https://localkonnect.com/lklogo.png"),
		},
		API: APIConfig{
			BaseURL:          getEnv("API_BASE_URL", "https://api.localkonnect.com/v1"),
			Timeout:          getEnvAsDuration("API_TIMEOUT", 30*time.Second),
			TokenWaitTimeout: getEnvAsDuration("TOKEN_WAIT_TIMEOUT", 10*time.Second),
		},
		Razorpay: RazorpayConfig{
			KeyID:       razorpayKey(),
			Environment: getEnv("RAZORPAY_ENV", "test"),
			CallbackAdr: getEnv("PAYMENT_CALLBACK_ADDR", "127.0.0.1:8972"),
		},
		Storage: StorageConfig{
			Path: getEnv("STATE_DB_PATH", defaultStatePath()),
		},
	}

	return config, nil
}

// razorpayKey picks the test or live key the same way the web client
// switched on its build environment.
func razorpayKey() string {
	if getEnv("ENV", "development") == "production" {
		return getEnv("RAZORPAY_LIVE_KEY_ID", "")
	}
	return getEnv("RAZORPAY_TEST_KEY_ID", "")
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lokonnect.db"
	}
	return filepath.Join(home, ".lokonnect", "state.db")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
