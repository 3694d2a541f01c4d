// Package config defines the top-level configuration for the props scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by PROPSCAN_* environment
// variables.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Books    BooksConfig    `toml:"books"`
	Compare  CompareConfig  `toml:"compare"`
	Ingest   IngestConfig   `toml:"ingest"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. Redis is optional: without
// it the scanner runs with in-process locking and no result cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds the snapshot backup target. Optional: without it refreshes
// skip the JSON backup step.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// BooksConfig holds the per-sportsbook scraper parameters.
type BooksConfig struct {
	DraftKings DraftKingsConfig `toml:"draftkings"`
	FanDuel    FanDuelConfig    `toml:"fanduel"`

	// Interval between automatic scrape cycles in full mode.
	ScrapeInterval duration `toml:"scrape_interval"`
}

// DraftKingsConfig holds the DraftKings API parameters.
type DraftKingsConfig struct {
	Enabled  bool     `toml:"enabled"`
	Site     string   `toml:"site"`
	LeagueID string   `toml:"league_id"`
	Throttle duration `toml:"throttle"`
}

// FanDuelConfig holds the FanDuel API parameters.
type FanDuelConfig struct {
	Enabled   bool     `toml:"enabled"`
	APIKey    string   `toml:"api_key"`
	Region    string   `toml:"region"`
	PageID    string   `toml:"page_id"`
	DaysAhead int      `toml:"days_ahead"`
	Throttle  duration `toml:"throttle"`
}

// CompareConfig holds the detector thresholds and the result cache TTL.
type CompareConfig struct {
	MinProfitPercent float64  `toml:"min_profit_percent"`
	MinLineDiff      float64  `toml:"min_line_diff"`
	MinOddsDiff      int      `toml:"min_odds_diff"`
	CacheTTL         duration `toml:"cache_ttl"`
}

// IngestConfig holds refresh parameters.
type IngestConfig struct {
	// LockTTL bounds how long a refresh may hold its per-book lock.
	LockTTL duration `toml:"lock_ttl"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "propscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "propscan-snapshots",
			Prefix:         "props_data",
			ForcePathStyle: true,
		},
		Books: BooksConfig{
			DraftKings: DraftKingsConfig{
				Enabled:  true,
				Site:     "US-OH-SB",
				LeagueID: "42648",
				Throttle: duration{2 * time.Second},
			},
			FanDuel: FanDuelConfig{
				Enabled:   true,
				Region:    "OH",
				PageID:    "nba",
				DaysAhead: 7,
				Throttle:  duration{2 * time.Second},
			},
			ScrapeInterval: duration{30 * time.Minute},
		},
		Compare: CompareConfig{
			MinProfitPercent: 0.5,
			MinLineDiff:      1.0,
			MinOddsDiff:      15,
			CacheTTL:         duration{5 * time.Minute},
		},
		Ingest: IngestConfig{
			LockTTL: duration{2 * time.Minute},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   120,
		},
		Notify: NotifyConfig{
			Events: []string{"arbitrage", "refresh_failed"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":   true,
	"scrape":  true,
	"analyze": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, scrape, analyze, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 {
		errs = append(errs, "database: pool_min_conns must be >= 0")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}

	// Books
	scrapes := c.Mode == "scrape" || c.Mode == "full"
	if scrapes {
		if !c.Books.DraftKings.Enabled && !c.Books.FanDuel.Enabled {
			errs = append(errs, "books: at least one sportsbook must be enabled for mode "+c.Mode)
		}
		if c.Books.DraftKings.Enabled && c.Books.DraftKings.LeagueID == "" {
			errs = append(errs, "books.draftkings: league_id must not be empty")
		}
		if c.Books.FanDuel.Enabled && c.Books.FanDuel.APIKey == "" {
			errs = append(errs, "books.fanduel: api_key must not be empty")
		}
		if c.Mode == "full" && c.Books.ScrapeInterval.Duration <= 0 {
			errs = append(errs, "books: scrape_interval must be > 0 for full mode")
		}
	}

	// Compare
	if c.Compare.MinProfitPercent < 0 {
		errs = append(errs, "compare: min_profit_percent must be >= 0")
	}
	if c.Compare.MinLineDiff < 0 {
		errs = append(errs, "compare: min_line_diff must be >= 0")
	}
	if c.Compare.MinOddsDiff < 0 {
		errs = append(errs, "compare: min_odds_diff must be >= 0")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Notify
	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
