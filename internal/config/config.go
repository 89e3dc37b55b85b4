package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"occupancy_backend/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the process configuration shared by the server and the CLI.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// DBSchemaPath, when set, is executed against PostgreSQL at startup.
	DBSchemaPath string

	Port               string
	CORSAllowedOrigins []string
	JWTSecret          string
	JWTTTL             time.Duration

	LogLevel  string
	LogFormat string

	SnapshotDBPath           string
	DefaultCommissionPercent decimal.Decimal
	LimitNightsPerYear       int
}

// Load reads an optional .env file (or the files given) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		DBHost:     utils.Getenv("DB_HOST", "localhost"),
		DBPort:     utils.Getenv("DB_PORT", "5432"),
		DBUser:     utils.Getenv("DB_USER", "occupancy_user"),
		DBPassword: utils.Getenv("DB_PASSWORD", "occupancy_password"),
		DBName:     utils.Getenv("DB_NAME", "occupancy_db"),
		DBSSLMode:  utils.Getenv("DB_SSLMODE", "disable"),

		DBSchemaPath: utils.Getenv("DB_SCHEMA_PATH", ""),

		Port:      utils.Getenv("PORT", "8080"),
		JWTSecret: utils.Getenv("JWT_SECRET", ""),
		JWTTTL:    utils.GetenvDuration("JWT_TTL", utils.DefaultAccessTokenTTL),

		LogLevel:  utils.Getenv("LOG_LEVEL", "info"),
		LogFormat: utils.Getenv("LOG_FORMAT", "console"),

		SnapshotDBPath:     utils.Getenv("SNAPSHOT_DB_PATH", "data/snapshots.db"),
		LimitNightsPerYear: utils.GetenvInt("LIMIT_NIGHTS_PER_YEAR", 180),
	}

	origins := utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	percent, err := decimal.NewFromString(utils.Getenv("DEFAULT_COMMISSION_PERCENT", "15"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_COMMISSION_PERCENT: %w", err)
	}
	cfg.DefaultCommissionPercent = percent

	if cfg.LimitNightsPerYear <= 0 {
		return nil, fmt.Errorf("LIMIT_NIGHTS_PER_YEAR must be positive, got %d", cfg.LimitNightsPerYear)
	}
	return cfg, nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
