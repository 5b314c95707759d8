package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Storage   StorageConfig
	Statutory StatutoryConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// StorageConfig holds generated-file storage configuration
type StorageConfig struct {
	BasePath string
}

// StatutoryConfig holds payroll processing knobs. Rates themselves come
// from DefaultRateConfig with per-field env overrides so an interim
// notification can be applied without a release.
type StatutoryConfig struct {
	Rates                  statutory.RateConfig
	RunFailureThresholdPct int
	DeadlineSweepInterval  time.Duration
}

func Load() (*Config, error) {
	// .env is a development convenience; in deployment everything comes
	// from the environment.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "arthapay_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt64("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvInt64("DB_MIN_CONNS", 5)),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./data/files"),
	}

	// Statutory configuration
	failureThreshold, err := strconv.Atoi(getEnv("RUN_FAILURE_THRESHOLD_PCT", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_FAILURE_THRESHOLD_PCT: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("DEADLINE_SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEADLINE_SWEEP_INTERVAL: %w", err)
	}

	rates := statutory.DefaultRateConfig()
	rates.ESIWageCeiling = getEnvInt64("ESI_WAGE_CEILING_PAISE", rates.ESIWageCeiling)
	rates.ESIEmployeeRateBP = getEnvInt64("ESI_EMPLOYEE_RATE_BP", rates.ESIEmployeeRateBP)
	rates.ESIEmployerRateBP = getEnvInt64("ESI_EMPLOYER_RATE_BP", rates.ESIEmployerRateBP)
	rates.PFWageCeiling = getEnvInt64("PF_WAGE_CEILING_PAISE", rates.PFWageCeiling)
	rates.PFEmployeeRateBP = getEnvInt64("PF_EMPLOYEE_RATE_BP", rates.PFEmployeeRateBP)
	rates.EPSRateBP = getEnvInt64("EPS_RATE_BP", rates.EPSRateBP)
	rates.StandardDeduction = getEnvInt64("TDS_STANDARD_DEDUCTION_PAISE", rates.StandardDeduction)
	rates.RebateCeiling = getEnvInt64("TDS_REBATE_CEILING_PAISE", rates.RebateCeiling)
	rates.CessRateBP = getEnvInt64("TDS_CESS_RATE_BP", rates.CessRateBP)

	config.Statutory = StatutoryConfig{
		Rates:                  rates,
		RunFailureThresholdPct: failureThreshold,
		DeadlineSweepInterval:  sweepInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Statutory.RunFailureThresholdPct < 1 || c.Statutory.RunFailureThresholdPct > 100 {
		return fmt.Errorf("RUN_FAILURE_THRESHOLD_PCT must be between 1 and 100")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
