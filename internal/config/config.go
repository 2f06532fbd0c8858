package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Drop store backends selectable with claims.store.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type PresenceConfig struct {
	// Grace and SessionTTL are Go duration strings ("15m", "8h").
	Grace      string `yaml:"grace"`
	SessionTTL string `yaml:"session_ttl"`
}

type ClaimsConfig struct {
	Cooldown   string `yaml:"cooldown"`
	ExpiryPoll string `yaml:"expiry_poll"`
	// Store picks the shared drop backend: memory, sqlite, postgres or redis.
	Store string `yaml:"store"`
}

type ScheduleConfig struct {
	// Recheck is a robfig/cron spec for re-evaluating tracked schedules.
	Recheck string `yaml:"recheck"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen string `yaml:"listen"`
	// Timezone is the IANA zone vendor schedules are evaluated in.
	Timezone string `yaml:"timezone"`

	Presence PresenceConfig `yaml:"presence"`
	Claims   ClaimsConfig   `yaml:"claims"`
	Schedule ScheduleConfig `yaml:"schedule"`

	SQLitePath  string `yaml:"sqlite_path"`
	DatabaseURL string `yaml:"database_url"`
	RedisAddr   string `yaml:"redis_addr"`
	SeedPath    string `yaml:"seed_path"`
}

func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Presence.Grace == "" {
		c.Presence.Grace = "15m"
	}
	if c.Presence.SessionTTL == "" {
		c.Presence.SessionTTL = "8h"
	}
	if c.Claims.Cooldown == "" {
		c.Claims.Cooldown = "60m"
	}
	if c.Claims.ExpiryPoll == "" {
		c.Claims.ExpiryPoll = "10s"
	}
	c.Claims.Store = strings.ToLower(strings.TrimSpace(c.Claims.Store))
	if c.Claims.Store == "" {
		c.Claims.Store = StoreSQLite
	}
	if c.Schedule.Recheck == "" {
		c.Schedule.Recheck = "@every 60s"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/app.db"
	}
}

// Validate checks values that Normalize cannot default.
func (c *Config) Validate() error {
	var errs []error

	durations := map[string]string{
		"presence.grace":       c.Presence.Grace,
		"presence.session_ttl": c.Presence.SessionTTL,
		"claims.cooldown":      c.Claims.Cooldown,
		"claims.expiry_poll":   c.Claims.ExpiryPoll,
	}
	for key, v := range durations {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", key, v))
		}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	switch c.Claims.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("claims.store=postgres requires database_url"))
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("claims.store=redis requires redis_addr"))
		}
	default:
		errs = append(errs, fmt.Errorf("claims.store: unknown backend %q", c.Claims.Store))
	}

	return errors.Join(errs...)
}

// The duration accessors assume Validate has passed.

func (c *Config) PresenceGrace() time.Duration { return mustDuration(c.Presence.Grace) }

func (c *Config) PresenceSessionTTL() time.Duration { return mustDuration(c.Presence.SessionTTL) }

func (c *Config) ClaimCooldown() time.Duration { return mustDuration(c.Claims.Cooldown) }

func (c *Config) ExpiryPoll() time.Duration { return mustDuration(c.Claims.ExpiryPoll) }

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Load reads the YAML file at path, overlays environment variables and
// validates the result. A missing file yields the defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("load config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("load config %q: parse yaml: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay := map[string]*string{
		"LISTEN_ADDR":          &c.Listen,
		"TIMEZONE":             &c.Timezone,
		"PRESENCE_GRACE":       &c.Presence.Grace,
		"PRESENCE_SESSION_TTL": &c.Presence.SessionTTL,
		"CLAIM_COOLDOWN":       &c.Claims.Cooldown,
		"EXPIRY_POLL":          &c.Claims.ExpiryPoll,
		"DROP_STORE":           &c.Claims.Store,
		"SCHEDULE_RECHECK":     &c.Schedule.Recheck,
		"DB_PATH":              &c.SQLitePath,
		"DATABASE_URL":         &c.DatabaseURL,
		"REDIS_ADDR":           &c.RedisAddr,
		"SEED_PATH":            &c.SeedPath,
	}
	for key, dst := range overlay {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LISTEN_ADDR") == "" {
		c.Listen = ":" + port
	}
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
