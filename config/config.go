// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"math"
	"os"
	fp "path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/OpenPeeDeeP/xdg"
	"github.com/pkg/errors"

	"github.com/erroneousboat/slackarchive-term/scroll"
)

const AppName = "slackarchive-term"

// Config is the root configuration structure.
type Config struct {
	Archive   ArchiveConfig   `toml:"archive"`
	Scroll    ScrollConfig    `toml:"scroll"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Cache     CacheConfig     `toml:"cache"`
	Theme     Theme           `toml:"theme"`
}

// ArchiveConfig points at the archive server.
type ArchiveConfig struct {
	URL            string `toml:"url"`
	Team           string `toml:"team"`
	PageSize       int    `toml:"page_size"`
	RefreshSeconds int    `toml:"refresh_seconds"`
}

// ScrollConfig tunes the chat scroll animation. Speed is in lines per second.
type ScrollConfig struct {
	Speed  float64 `toml:"speed"`
	Easing string  `toml:"easing"`
	FPS    int     `toml:"fps"`
}

// RateLimitConfig bounds requests to the archive server.
type RateLimitConfig struct {
	Burst        int `toml:"burst"`
	RefillMillis int `toml:"refill_millis"`
}

// CacheConfig locates the persistent user cache.
type CacheConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

// Theme holds lipgloss colors for the panes.
type Theme struct {
	Border    string `toml:"border"`
	Selected  string `toml:"selected"`
	Muted     string `toml:"muted"`
	Time      string `toml:"time"`
	Name      string `toml:"name"`
	Text      string `toml:"text"`
	Highlight string `toml:"highlight"`
	Mode      string `toml:"mode"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			URL:            "http://localhost:8080",
			PageSize:       50,
			RefreshSeconds: 30,
		},
		Scroll: ScrollConfig{
			Speed:  250,
			Easing: scroll.DefaultEasing,
			FPS:    scroll.DefaultFPS,
		},
		RateLimit: RateLimitConfig{
			Burst:        20,
			RefillMillis: 250,
		},
		Theme: Theme{
			Border:    "#414868",
			Selected:  "170",
			Muted:     "240",
			Time:      "#565f89",
			Name:      "#7aa2f7",
			Text:      "#c0caf5",
			Highlight: "#e0af68",
			Mode:      "#7dcfff",
		},
	}
}

// DefaultPath returns the config file location under the XDG config dirs, or
// an empty string when none exists.
func DefaultPath() string {
	return xdg.New(AppName, "").QueryConfig("config.toml")
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, errors.Wrapf(err, "decode %s", path)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.Archive.URL == "" {
		return errors.New("config: archive.url is required")
	}
	if !strings.HasPrefix(c.Archive.URL, "http://") && !strings.HasPrefix(c.Archive.URL, "https://") {
		return errors.Errorf("config: archive.url %q must be http or https", c.Archive.URL)
	}
	if c.Archive.PageSize <= 0 {
		return errors.Errorf("config: archive.page_size must be positive, got %d", c.Archive.PageSize)
	}
	if !(c.Scroll.Speed > 0) || math.IsInf(c.Scroll.Speed, 1) {
		return errors.Errorf("config: scroll.speed must be positive, got %v", c.Scroll.Speed)
	}
	if !scroll.ValidEasing(c.Scroll.Easing) {
		return errors.Errorf("config: scroll.easing %q is not one of %s",
			c.Scroll.Easing, strings.Join(scroll.EasingNames(), ", "))
	}
	if c.Scroll.FPS <= 0 {
		return errors.Errorf("config: scroll.fps must be positive, got %d", c.Scroll.FPS)
	}
	if c.RateLimit.Burst <= 0 || c.RateLimit.RefillMillis <= 0 {
		return errors.New("config: rate_limit.burst and rate_limit.refill_millis must be positive")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SLACKARCHIVE_URL"); v != "" {
		cfg.Archive.URL = v
	}

	if v := os.Getenv("SLACKARCHIVE_TEAM"); v != "" {
		cfg.Archive.Team = v
	}

	if v := os.Getenv("SLACKARCHIVE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Archive.PageSize = n
		}
	}

	if v := os.Getenv("SLACKARCHIVE_SCROLL_SPEED"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scroll.Speed = f
		}
	}

	if v := os.Getenv("SLACKARCHIVE_SCROLL_EASING"); v != "" {
		cfg.Scroll.Easing = v
	}
}

// CacheDir returns the cache directory, creating it if needed.
func CacheDir() (string, error) {
	dir := fp.Join(xdg.CacheHome(), AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create cache dir")
	}
	return dir, nil
}

// UserCachePath returns where the user cache database lives.
func (c *Config) UserCachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return fp.Join(dir, "users.db"), nil
}
