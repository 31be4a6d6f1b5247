package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Logger     Logger     `mapstructure:"logger"`
	MarketData MarketData `mapstructure:"marketdata"`
	Storage    Storage    `mapstructure:"storage"`
	PriceBot   PriceBot   `mapstructure:"pricebot"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the sqlite database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MarketData holds the configuration for the quote provider client.
type MarketData struct {
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Storage holds the configuration for attachment storage on disk.
type Storage struct {
	AttachmentsDir string `mapstructure:"attachments_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// PriceBot holds the configuration for the snapshot polling daemon.
type PriceBot struct {
	TickInterval int `mapstructure:"tick_interval"` // seconds
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("database.dsn", "research.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("marketdata.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("marketdata.rate_limit", 5) // requests per second
	viper.SetDefault("marketdata.rate_limit_burst", 2)
	viper.SetDefault("storage.attachments_dir", "./attachments")
	viper.SetDefault("storage.max_upload_bytes", 25<<20)
	viper.SetDefault("pricebot.tick_interval", 3600)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
