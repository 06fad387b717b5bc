package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Port                    int    `env:"PORT" envDefault:"8080"`
	BasePath                string `env:"BASE_PATH" envDefault:"."`
	TimeoutSeconds          int    `env:"TIMEOUT_SECONDS" envDefault:"30"`
	ErrorDetailLevel        string `env:"ERROR_DETAIL_LEVEL" envDefault:"warn"`
	Debug                   bool   `env:"DEBUG" envDefault:"false"`
	MaxRequestBodySize      int    `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
	MaxTeamSize             int    `env:"MAX_TEAM_SIZE" envDefault:"7"`
	MaxSimulationIterations int    `env:"MAX_SIMULATION_ITERATIONS" envDefault:"100000"`
	TempFileRetentionCount  int    `env:"TEMP_FILE_RETENTION_COUNT" envDefault:"50"`
	ResultRetentionCount    int    `env:"RESULT_RETENTION_COUNT" envDefault:"10"`
	EnableCORS              bool   `env:"ENABLE_CORS" envDefault:"true"`
	CORSOrigin              string `env:"CORS_ORIGIN" envDefault:"*"`
	FileOperationRetries    int    `env:"FILE_OPERATION_RETRIES" envDefault:"3"`

	DatabaseURL     string `env:"DATABASE_URL" envDefault:"file:dish_battle.db"`
	DishCatalogPath string `env:"DISH_CATALOG_PATH"`
	ServiceToken    string `env:"SERVICE_TOKEN"`

	CloudflareAccountID string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `env:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `env:"R2_BUCKET_NAME"`
	CDNBaseURL          string `env:"CDN_BASE_URL"`

	RetentionInterval    time.Duration `env:"RETENTION_INTERVAL" envDefault:"5m"`
	BattleRecordTTL      time.Duration `env:"BATTLE_RECORD_TTL" envDefault:"168h"`
	PoolEntryTTL         time.Duration `env:"POOL_ENTRY_TTL" envDefault:"24h"`
	OpponentSyncInterval time.Duration `env:"OPPONENT_SYNC_INTERVAL" envDefault:"1m"`
	WorkerPollInterval   time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"250ms"`
}

var detailLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the process environment into a validated Config.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.ErrorDetailLevel = strings.ToLower(strings.TrimSpace(cfg.ErrorDetailLevel))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("TIMEOUT_SECONDS must be positive"))
	}
	if !detailLevels[c.ErrorDetailLevel] {
		errs = append(errs, fmt.Errorf("ERROR_DETAIL_LEVEL %q is not one of trace, debug, info, warn, error", c.ErrorDetailLevel))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}
	if c.MaxTeamSize < 1 || c.MaxTeamSize > 7 {
		errs = append(errs, fmt.Errorf("MAX_TEAM_SIZE %d must be between 1 and 7", c.MaxTeamSize))
	}
	if c.MaxSimulationIterations <= 0 {
		errs = append(errs, errors.New("MAX_SIMULATION_ITERATIONS must be positive"))
	}
	if c.TempFileRetentionCount < 0 || c.ResultRetentionCount < 0 {
		errs = append(errs, errors.New("retention counts must not be negative"))
	}
	if c.FileOperationRetries < 1 {
		errs = append(errs, errors.New("FILE_OPERATION_RETRIES must be at least 1"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}
	if c.RetentionInterval <= 0 || c.OpponentSyncInterval <= 0 || c.WorkerPollInterval <= 0 {
		errs = append(errs, errors.New("intervals must be positive"))
	}
	return errors.Join(errs...)
}

// MaxIterations is the simulation step cap: the timeout at 60 steps per
// second, bounded by MaxSimulationIterations.
func (c Config) MaxIterations() int {
	return min(c.TimeoutSeconds*60, c.MaxSimulationIterations)
}

// Timeout is the wall-clock budget of one simulation.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IncludeErrorDetails reports whether error responses carry details.
func (c Config) IncludeErrorDetails() bool {
	return c.ErrorDetailLevel == "trace" || c.ErrorDetailLevel == "info"
}

// UsesSQLite reports whether DATABASE_URL names a sqlite database rather
// than a postgres DSN.
func (c Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "file:") || strings.HasSuffix(c.DatabaseURL, ".db")
}

// R2Enabled reports whether report uploads are configured.
func (c Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2AccessKeyID != "" && c.R2AccessKeySecret != "" && c.R2BucketName != ""
}

func (c Config) OpponentsPath() string { return filepath.Join(c.BasePath, "resources", "battles", "opponents") }
func (c Config) TempPath() string      { return filepath.Join(c.BasePath, "output", "battles") }
func (c Config) ResultsPath() string   { return filepath.Join(c.TempPath(), "results") }
func (c Config) DebugPath() string     { return filepath.Join(c.TempPath(), "debug") }
