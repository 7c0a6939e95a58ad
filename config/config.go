package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// ServiceEntry describes one catalog service as configured. The catalog
// itself is an external collaborator; this is the static projection the core
// consumes (price and the day's candidate slot grid).
type ServiceEntry struct {
	ID    string   `mapstructure:"id"`
	Name  string   `mapstructure:"name"`
	Price float64  `mapstructure:"price"`
	Slots []string `mapstructure:"slots"`
	Skill string   `mapstructure:"skill"`
}

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Reservation hold: how long a reserved slot may sit without a booking
	// record before it becomes reclaimable.
	HoldTimeoutSeconds int `mapstructure:"HOLD_TIMEOUT_SECONDS"`

	// Availability snapshot TTL for the read path.
	AvailabilityTTLSeconds int `mapstructure:"AVAILABILITY_TTL_SECONDS"`

	// Catalog projection. Services not listed fall back to the defaults
	// below when they are set.
	Services            []ServiceEntry `mapstructure:"SERVICES"`
	DefaultSlots        []string       `mapstructure:"DEFAULT_SLOTS"`
	DefaultServicePrice float64        `mapstructure:"DEFAULT_SERVICE_PRICE"`
}

// Load reads configuration from config.yaml and the environment and returns
// an explicit handle; components receive it at construction time.
func Load() (*Config, error) {
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
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "homely")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("HOLD_TIMEOUT_SECONDS", 30)
	viper.SetDefault("AVAILABILITY_TTL_SECONDS", 5)
	viper.SetDefault("DEFAULT_SLOTS", []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"})
	viper.SetDefault("DEFAULT_SERVICE_PRICE", 50)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HoldTimeout returns the reservation hold window as a duration.
func (c *Config) HoldTimeout() time.Duration {
	return time.Duration(c.HoldTimeoutSeconds) * time.Second
}

// AvailabilityTTL returns the availability snapshot lifetime.
func (c *Config) AvailabilityTTL() time.Duration {
	return time.Duration(c.AvailabilityTTLSeconds) * time.Second
}
