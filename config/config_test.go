package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.Archive.PageSize != 50 {
		t.Errorf("expected page_size=50, got %d", cfg.Archive.PageSize)
	}
	if cfg.Scroll.Easing != "easeInOutQuint" {
		t.Errorf("expected easing=easeInOutQuint, got %s", cfg.Scroll.Easing)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[archive]
url = "https://archive.example.com"
team = "gophers"
page_size = 25

[scroll]
speed = 120.5
easing = "easeOutSine"

[cache]
disabled = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Archive.URL != "https://archive.example.com" {
		t.Errorf("expected url override, got %s", cfg.Archive.URL)
	}
	if cfg.Archive.Team != "gophers" {
		t.Errorf("expected team=gophers, got %s", cfg.Archive.Team)
	}
	if cfg.Archive.PageSize != 25 {
		t.Errorf("expected page_size=25, got %d", cfg.Archive.PageSize)
	}
	if cfg.Scroll.Speed != 120.5 {
		t.Errorf("expected speed=120.5, got %v", cfg.Scroll.Speed)
	}
	if cfg.Scroll.Easing != "easeOutSine" {
		t.Errorf("expected easing=easeOutSine, got %s", cfg.Scroll.Easing)
	}
	if !cfg.Cache.Disabled {
		t.Error("expected cache to be disabled")
	}
	// Untouched sections keep their defaults.
	if cfg.Scroll.FPS != 60 {
		t.Errorf("expected fps default 60, got %d", cfg.Scroll.FPS)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.URL != DefaultConfig().Archive.URL {
		t.Errorf("expected default url, got %s", cfg.Archive.URL)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[archive\nurl = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SLACKARCHIVE_URL", "https://env.example.com")
	t.Setenv("SLACKARCHIVE_TEAM", "envteam")
	t.Setenv("SLACKARCHIVE_PAGE_SIZE", "10")
	t.Setenv("SLACKARCHIVE_SCROLL_SPEED", "99")
	t.Setenv("SLACKARCHIVE_SCROLL_EASING", "easeInOutSine")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Archive.URL != "https://env.example.com" {
		t.Errorf("expected env url, got %s", cfg.Archive.URL)
	}
	if cfg.Archive.Team != "envteam" {
		t.Errorf("expected env team, got %s", cfg.Archive.Team)
	}
	if cfg.Archive.PageSize != 10 {
		t.Errorf("expected page_size=10, got %d", cfg.Archive.PageSize)
	}
	if cfg.Scroll.Speed != 99 {
		t.Errorf("expected speed=99, got %v", cfg.Scroll.Speed)
	}
	if cfg.Scroll.Easing != "easeInOutSine" {
		t.Errorf("expected easing=easeInOutSine, got %s", cfg.Scroll.Easing)
	}
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv("SLACKARCHIVE_PAGE_SIZE", "lots")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Archive.PageSize != 50 {
		t.Errorf("expected default page_size, got %d", cfg.Archive.PageSize)
	}
}

func TestEnvOverrideRejectsNaNSpeed(t *testing.T) {
	t.Setenv("SLACKARCHIVE_SCROLL_SPEED", "NaN")

	if _, err := Load(""); err == nil {
		t.Error("expected NaN scroll speed to fail validation")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Archive.URL = "" }},
		{"bad scheme", func(c *Config) { c.Archive.URL = "ftp://archive" }},
		{"zero page size", func(c *Config) { c.Archive.PageSize = 0 }},
		{"zero speed", func(c *Config) { c.Scroll.Speed = 0 }},
		{"negative speed", func(c *Config) { c.Scroll.Speed = -1 }},
		{"nan speed", func(c *Config) { c.Scroll.Speed = math.NaN() }},
		{"infinite speed", func(c *Config) { c.Scroll.Speed = math.Inf(1) }},
		{"unknown easing", func(c *Config) { c.Scroll.Easing = "bogus" }},
		{"zero fps", func(c *Config) { c.Scroll.FPS = 0 }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUserCachePathOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Path = "/tmp/users.db"

	path, err := cfg.UserCachePath()
	if err != nil {
		t.Fatalf("UserCachePath: %v", err)
	}
	if path != "/tmp/users.db" {
		t.Errorf("expected override path, got %s", path)
	}
}
