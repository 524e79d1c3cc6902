package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store drivers
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	AppMode     string
	Port        string
	LogLevel    string
	StoreDriver string
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Loyalty     LoyaltyConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds the optional Redis connection used for order numbers
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// JWTConfig holds the secret shared with the identity provider
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// LoyaltyConfig holds reward settings
type LoyaltyConfig struct {
	RewardsCatalogPath  string
	VoucherValidityDays int
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	driver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMySQL)))
	if driver != StoreMySQL && driver != StoreMemory {
		return nil, fmt.Errorf("invalid STORE_DRIVER: '%s' (must be '%s' or '%s')", driver, StoreMySQL, StoreMemory)
	}

	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}
	loyalty, err := loadLoyaltyConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:     appMode,
		Port:        getEnv("PORT", "3000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StoreDriver: driver,
		Database:    loadDatabaseConfig(appMode),
		Redis:       redisCfg,
		JWT:         loadJWTConfig(appMode),
		Loyalty:     loyalty,
	}

	log.Info().Str("mode", appMode).Str("store", driver).Msg("configuration loaded")
	return config, nil
}

// modePrefix returns the env prefix for mode-specific keys
func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "cafe_ledger"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", "default_secret"),
		AccessTokenMins: accessMins,
	}
}

func loadRedisConfig() (RedisConfig, error) {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil || db < 0 {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: '%s'", os.Getenv("REDIS_DB"))
	}
	return RedisConfig{
		Addr:     strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}, nil
}

func loadLoyaltyConfig() (LoyaltyConfig, error) {
	days, err := strconv.Atoi(getEnv("VOUCHER_VALIDITY_DAYS", "90"))
	if err != nil || days < 1 {
		return LoyaltyConfig{}, fmt.Errorf("invalid VOUCHER_VALIDITY_DAYS: '%s'", os.Getenv("VOUCHER_VALIDITY_DAYS"))
	}
	return LoyaltyConfig{
		RewardsCatalogPath:  strings.TrimSpace(getEnv("REWARDS_CATALOG_PATH", "")),
		VoucherValidityDays: days,
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://order.example.com"
	}
	return origins
}
