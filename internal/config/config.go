package config

import (
	"fmt"
	"kvk-dashboard/internal/constants"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

type Config struct {
	DBPath          string
	ServerPort      string
	LogLevel        string
	AdminToken      string
	StoreDriver     string
	MaxUploadBytes  int64
	LeaderboardSize int
	CORSOrigins     []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:      getEnv("DB_PATH", "kvk.db"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverSQLite),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", constants.DefaultMaxUploadBytes); err != nil {
		return nil, err
	}
	size, err := getEnvInt64("LEADERBOARD_SIZE", constants.DefaultLeaderboardSize)
	if err != nil {
		return nil, err
	}
	cfg.LeaderboardSize = int(size)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AdminToken == "" {
		logger.Warn().Msg("ADMIN_TOKEN is empty, admin endpoints will reject every request")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("store_driver", cfg.StoreDriver).
		Int64("max_upload_bytes", cfg.MaxUploadBytes).
		Int("leaderboard_size", cfg.LeaderboardSize).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.LeaderboardSize <= 0 || c.LeaderboardSize > constants.MaxLeaderboardSize {
		return fmt.Errorf("LEADERBOARD_SIZE must be between 1 and %d", constants.MaxLeaderboardSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)
