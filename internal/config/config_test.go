package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidateWithAPIKey(t *testing.T) {
	cfg := Defaults()
	cfg.Books.FanDuel.APIKey = "FhMFpcPWXMeyZxOx"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "replay"
	cfg.LogLevel = "verbose"
	cfg.Server.Port = 0
	cfg.Compare.MinLineDiff = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"mode", "log_level", "server: port", "min_line_diff"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestValidateScrapeModeNeedsABook(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "scrape"
	cfg.Books.DraftKings.Enabled = false
	cfg.Books.FanDuel.Enabled = false

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "at least one sportsbook") {
		t.Fatalf("Validate() = %v, want sportsbook error", err)
	}

	// Analyze mode reads the stored board and never scrapes.
	cfg.Mode = "analyze"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil for analyze mode", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROPSCAN_MODE", "serve")
	t.Setenv("PROPSCAN_DATABASE_PASSWORD", "hunter2")
	t.Setenv("PROPSCAN_REDIS_ENABLED", "true")
	t.Setenv("PROPSCAN_SCRAPE_INTERVAL", "15m")
	t.Setenv("PROPSCAN_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Mode != "serve" {
		t.Errorf("Mode = %q, want serve", cfg.Mode)
	}
	if cfg.Database.Password != "hunter2" {
		t.Errorf("Database.Password = %q", cfg.Database.Password)
	}
	if !cfg.Redis.Enabled {
		t.Error("Redis.Enabled = false, want true")
	}
	if cfg.Books.ScrapeInterval.Duration != 15*time.Minute {
		t.Errorf("ScrapeInterval = %v, want 15m", cfg.Books.ScrapeInterval.Duration)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) || cfg.Server.CORSOrigins[0] != want[0] || cfg.Server.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", d.Duration)
	}
	out, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(out) != "1m30s" {
		t.Errorf("MarshalText = %q, want 1m30s", out)
	}
}
