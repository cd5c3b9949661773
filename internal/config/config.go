package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Quotes struct {
	Endpoint              string `json:"endpoint"`
	UserAgent             string `json:"user_agent"`
	TimeoutSec            int    `json:"timeout_sec"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
}

type Portfolio struct {
	DataFile       string `json:"data_file"`
	MaxConcurrency int    `json:"max_concurrency"`
}

type Logging struct {
	Level string `json:"level"`
}

type Config struct {
	Server    Server    `json:"server"`
	Quotes    Quotes    `json:"quotes"`
	Portfolio Portfolio `json:"portfolio"`
	Logging   Logging   `json:"logging"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15},
		Quotes: Quotes{
			Endpoint:        "https://finance.naver.com",
			TimeoutSec:      10,
			CacheTTLSeconds: 300,
		},
		Portfolio: Portfolio{
			DataFile:       "portfolio.json",
			MaxConcurrency: 4,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && v > 0 {
		cfg.Server.RequestTimeoutSec = v
	}
	if v := os.Getenv("QUOTES_ENDPOINT"); v != "" {
		cfg.Quotes.Endpoint = v
	}
	if v := os.Getenv("QUOTES_USER_AGENT"); v != "" {
		cfg.Quotes.UserAgent = v
	}
	if v, ok := envInt("QUOTES_TIMEOUT_SEC"); ok && v > 0 {
		cfg.Quotes.TimeoutSec = v
	}
	if v, ok := envInt("QUOTES_CACHE_TTL_SEC"); ok && v >= 0 {
		cfg.Quotes.CacheTTLSeconds = v
	}
	if v, ok := envInt("QUOTES_MAX_RPM"); ok && v >= 0 {
		cfg.Quotes.MaxRequestsPerMinute = v
	}
	if v, ok := envInt("QUOTES_MIN_INTERVAL_SEC"); ok && v >= 0 {
		cfg.Quotes.MinRequestIntervalSec = v
	}
	if v, ok := envInt("QUOTES_BURST"); ok && v > 0 {
		cfg.Quotes.Burst = v
	}
	if v := os.Getenv("DATA_FILE"); v != "" {
		cfg.Portfolio.DataFile = v
	}
	if v, ok := envInt("MAX_CONCURRENCY"); ok && v > 0 {
		cfg.Portfolio.MaxConcurrency = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err != nil {
		return 0, false
	}
	return x, true
}
