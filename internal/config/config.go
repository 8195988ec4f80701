// Package config loads service configuration from an optional YAML file
// with environment-variable overrides. Every field has a usable default so
// the service runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Feed   FeedConfig   `yaml:"feed"`
	Poll   PollConfig   `yaml:"poll"`
	Lock   LockConfig   `yaml:"lock"`
	Risk   RiskConfig   `yaml:"risk"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StoreConfig struct {
	DatabaseURL string        `yaml:"database_url"`
	RedisURL    string        `yaml:"redis_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

type FeedConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type PollConfig struct {
	EventsInterval time.Duration `yaml:"events_interval"`
	StatsInterval  time.Duration `yaml:"stats_interval"`
}

type LockConfig struct {
	RecencyWindow   time.Duration `yaml:"recency_window"`
	AttackThreshold int           `yaml:"attack_threshold"`
	CriticalMinute  int           `yaml:"critical_minute"`
	CriticalMargin  int           `yaml:"critical_margin"`
}

type RiskConfig struct {
	MaxStake         string `yaml:"max_stake"`
	MaxMatchExposure string `yaml:"max_match_exposure"`
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and applies environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file is fine; env and defaults carry the config.
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Store:  StoreConfig{CacheTTL: 30 * time.Second},
		Feed:   FeedConfig{BaseURL: "http://localhost:9090", Timeout: 10 * time.Second},
		Poll: PollConfig{
			EventsInterval: 12 * time.Second,
			StatsInterval:  30 * time.Second,
		},
		Lock: LockConfig{
			RecencyWindow:   30 * time.Second,
			AttackThreshold: 2,
			CriticalMinute:  80,
			CriticalMargin:  1,
		},
		Risk: RiskConfig{
			MaxStake:         "10000",
			MaxMatchExposure: "50000",
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Store.DatabaseURL, "DATABASE_URL")
	setString(&cfg.Store.RedisURL, "REDIS_URL")
	setString(&cfg.Feed.BaseURL, "FEED_BASE_URL")
	setDuration(&cfg.Feed.Timeout, "FEED_TIMEOUT")
	setDuration(&cfg.Poll.EventsInterval, "POLL_EVENTS_INTERVAL")
	setDuration(&cfg.Poll.StatsInterval, "POLL_STATS_INTERVAL")
	setDuration(&cfg.Lock.RecencyWindow, "LOCK_RECENCY_WINDOW")
	setString(&cfg.Risk.MaxStake, "RISK_MAX_STAKE")
	setString(&cfg.Risk.MaxMatchExposure, "RISK_MAX_MATCH_EXPOSURE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
