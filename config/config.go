package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AllowedOrigins    string `mapstructure:"ALLOWED_ORIGINS"`

	// Webhook backend (the workflow engine doing the actual flight
	// search, pricing and booking). Paths are deployment configuration.
	WebhookBaseURL       string `mapstructure:"WEBHOOK_BASE_URL"`
	WebhookSearchPath    string `mapstructure:"WEBHOOK_SEARCH_PATH"`
	WebhookSelectPath    string `mapstructure:"WEBHOOK_SELECT_PATH"`
	WebhookPassengerPath string `mapstructure:"WEBHOOK_PASSENGER_PATH"`
	WebhookConfirmPath   string `mapstructure:"WEBHOOK_CONFIRM_PATH"`
	WebhookTimeoutSecs   int    `mapstructure:"WEBHOOK_TIMEOUT_SECS"`

	// Session store configuration.
	SessionStore      string `mapstructure:"SESSION_STORE"` // "memory" or "redis"
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB    int    `mapstructure:"REDIS_SESSION_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("WEBHOOK_BASE_URL", "http://localhost:5678/webhook")
	viper.SetDefault("WEBHOOK_SEARCH_PATH", "/flight-search")
	viper.SetDefault("WEBHOOK_SELECT_PATH", "/flight-select")
	viper.SetDefault("WEBHOOK_PASSENGER_PATH", "/passenger-data")
	viper.SetDefault("WEBHOOK_CONFIRM_PATH", "/booking-confirm")
	viper.SetDefault("WEBHOOK_TIMEOUT_SECS", 30)
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
