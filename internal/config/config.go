package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	App        AppConfig
	Import     ImportConfig
	Matching   MatchingConfig
	Adjustment AdjustmentConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	Username        string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	JWTSecret   string
	JWTIssuer   string
}

// ImportConfig bounds statement processing
type ImportConfig struct {
	MaxRows        int
	SampleRows     int
	PreviewRows    int
	SkipDuplicates bool
}

// MatchingConfig overrides the default scoring policy
type MatchingConfig struct {
	DateWeight        float64
	AmountWeight      float64
	DescriptionWeight float64
	AmountTolerance   float64
	DateToleranceDays int
	MaxAmountVariance float64
	FullSimilarity    float64
	PartialSimilarity float64
	MinScore          float64
	AutoApplyScore    float64
	MaxSuggestions    int
}

// AdjustmentConfig holds defaults for bank adjustment proposals
type AdjustmentConfig struct {
	// MaterialityThresholdMinor is in currency minor units: 100000 is 1000.00
	MaterialityThresholdMinor int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			MaxUploadBytes: int64(getIntEnv("SERVER_MAX_UPLOAD_BYTES", 20<<20)),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			Username:        getEnv("DB_USERNAME", "root"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "bank_reconciliation"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			Path:            getEnv("DB_PATH", "reconciliation.db"),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
			JWTIssuer:   getEnv("JWT_ISSUER", ""),
		},
		Import: ImportConfig{
			MaxRows:        getIntEnv("IMPORT_MAX_ROWS", 10000),
			SampleRows:     getIntEnv("IMPORT_SAMPLE_ROWS", 5),
			PreviewRows:    getIntEnv("IMPORT_PREVIEW_ROWS", 50),
			SkipDuplicates: getBoolEnv("IMPORT_SKIP_DUPLICATES", false),
		},
		Matching: MatchingConfig{
			DateWeight:        getFloatEnv("MATCH_DATE_WEIGHT", 0.4),
			AmountWeight:      getFloatEnv("MATCH_AMOUNT_WEIGHT", 0.4),
			DescriptionWeight: getFloatEnv("MATCH_DESCRIPTION_WEIGHT", 0.2),
			AmountTolerance:   getFloatEnv("MATCH_AMOUNT_TOLERANCE", 0.01),
			DateToleranceDays: getIntEnv("MATCH_DATE_TOLERANCE_DAYS", 3),
			MaxAmountVariance: getFloatEnv("MATCH_MAX_AMOUNT_VARIANCE", 0.05),
			FullSimilarity:    getFloatEnv("MATCH_FULL_SIMILARITY", 0.8),
			PartialSimilarity: getFloatEnv("MATCH_PARTIAL_SIMILARITY", 0.5),
			MinScore:          getFloatEnv("MATCH_MIN_SCORE", 0.5),
			AutoApplyScore:    getFloatEnv("MATCH_AUTO_APPLY_SCORE", 0.7),
			MaxSuggestions:    getIntEnv("MATCH_MAX_SUGGESTIONS", 3),
		},
		Adjustment: AdjustmentConfig{
			MaterialityThresholdMinor: int64(getIntEnv("ADJUSTMENT_MATERIALITY_THRESHOLD_MINOR", 100000)),
		},
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
