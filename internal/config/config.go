package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	defaultPort         = 9191
	defaultMigrationDir = "file://db/migration"
)

type Config struct {
	Stage          string
	Port           int
	DatabaseUrl    string
	MigrationDir   string
	LogLevel       log.Level
	AllowedOrigins []string
}

// AnalyticsEnabled reports whether a database is configured.
func (c Config) AnalyticsEnabled() bool {
	return c.DatabaseUrl != ""
}

func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Load reads the configuration from the environment. Outside of prod an
// .env file is loaded first if present.
func Load() (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Stage:        getenv("STAGE"),
		Port:         defaultPort,
		DatabaseUrl:  getenv("DATABASE_URL"),
		MigrationDir: getenv("MIGRATION_DIR"),
	}

	if cfg.Stage == "" {
		cfg.Stage = StageDev
	}
	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, fmt.Errorf("stage must be either dev or prod, got %q", cfg.Stage)
	}

	if portEnv := getenv("PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", portEnv, err)
		}
		cfg.Port = port
	}

	if cfg.MigrationDir == "" {
		cfg.MigrationDir = defaultMigrationDir
	}

	cfg.LogLevel = log.InfoLevel
	if cfg.Stage == StageDev {
		cfg.LogLevel = log.DebugLevel
	}
	if levelEnv := getenv("LOG_LEVEL"); levelEnv != "" {
		level, err := log.ParseLevel(levelEnv)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	if originsEnv := getenv("ALLOWED_ORIGINS"); originsEnv != "" {
		for _, origin := range strings.Split(originsEnv, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	return cfg, nil
}
