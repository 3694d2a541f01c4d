package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PROPSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PROPSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Database ──
	setStr(&cfg.Database.DSN, "PROPSCAN_DATABASE_DSN")
	setStr(&cfg.Database.DSN, "PROPSCAN_DATABASE_URL") // compatibility alias
	setStr(&cfg.Database.Host, "PROPSCAN_DATABASE_HOST")
	setInt(&cfg.Database.Port, "PROPSCAN_DATABASE_PORT")
	setStr(&cfg.Database.Database, "PROPSCAN_DATABASE_NAME")
	setStr(&cfg.Database.User, "PROPSCAN_DATABASE_USER")
	setStr(&cfg.Database.Password, "PROPSCAN_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "PROPSCAN_DATABASE_SSL_MODE")
	setInt(&cfg.Database.PoolMaxConns, "PROPSCAN_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "PROPSCAN_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "PROPSCAN_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "PROPSCAN_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "PROPSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PROPSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PROPSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PROPSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PROPSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PROPSCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PROPSCAN_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PROPSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PROPSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "PROPSCAN_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "PROPSCAN_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "PROPSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PROPSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PROPSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PROPSCAN_S3_FORCE_PATH_STYLE")

	// ── Books ──
	setBool(&cfg.Books.DraftKings.Enabled, "PROPSCAN_DRAFTKINGS_ENABLED")
	setStr(&cfg.Books.DraftKings.Site, "PROPSCAN_DRAFTKINGS_SITE")
	setStr(&cfg.Books.DraftKings.LeagueID, "PROPSCAN_DRAFTKINGS_LEAGUE_ID")
	setDuration(&cfg.Books.DraftKings.Throttle, "PROPSCAN_DRAFTKINGS_THROTTLE")
	setBool(&cfg.Books.FanDuel.Enabled, "PROPSCAN_FANDUEL_ENABLED")
	setStr(&cfg.Books.FanDuel.APIKey, "PROPSCAN_FANDUEL_API_KEY")
	setStr(&cfg.Books.FanDuel.Region, "PROPSCAN_FANDUEL_REGION")
	setStr(&cfg.Books.FanDuel.PageID, "PROPSCAN_FANDUEL_PAGE_ID")
	setInt(&cfg.Books.FanDuel.DaysAhead, "PROPSCAN_FANDUEL_DAYS_AHEAD")
	setDuration(&cfg.Books.FanDuel.Throttle, "PROPSCAN_FANDUEL_THROTTLE")
	setDuration(&cfg.Books.ScrapeInterval, "PROPSCAN_SCRAPE_INTERVAL")

	// ── Compare ──
	setFloat64(&cfg.Compare.MinProfitPercent, "PROPSCAN_COMPARE_MIN_PROFIT_PERCENT")
	setFloat64(&cfg.Compare.MinLineDiff, "PROPSCAN_COMPARE_MIN_LINE_DIFF")
	setInt(&cfg.Compare.MinOddsDiff, "PROPSCAN_COMPARE_MIN_ODDS_DIFF")
	setDuration(&cfg.Compare.CacheTTL, "PROPSCAN_COMPARE_CACHE_TTL")

	// ── Ingest ──
	setDuration(&cfg.Ingest.LockTTL, "PROPSCAN_INGEST_LOCK_TTL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "PROPSCAN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "PROPSCAN_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PROPSCAN_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "PROPSCAN_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "PROPSCAN_SERVER_RATE_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PROPSCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PROPSCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PROPSCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PROPSCAN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "PROPSCAN_MODE")
	setStr(&cfg.LogLevel, "PROPSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
