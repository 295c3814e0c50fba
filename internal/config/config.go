package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type GeocodeConfig struct {
	NaverClientID     string `toml:"naver_client_id"`
	NaverClientSecret string `toml:"naver_client_secret"`
	NominatimBaseURL  string `toml:"nominatim_base_url"`
	UserAgent         string `toml:"user_agent"`
}

type DBConfig struct {
	Type string `toml:"type"` // sqlite or postgres
	DSN  string `toml:"dsn"`
}

type CrawlConfig struct {
	RequestTimeoutSecs int     `toml:"request_timeout_secs"`
	RatePerSec         float64 `toml:"rate_per_sec"`
	MaxPerSource       int     `toml:"max_per_source"`
	CacheMaxAgeHours   int     `toml:"cache_max_age_hours"`
	SearchRadiusKm     float64 `toml:"search_radius_km"`
}

type Config struct {
	LLM     LLMConfig     `toml:"llm"`
	Geocode GeocodeConfig `toml:"geocode"`
	DB      DBConfig      `toml:"db"`
	Crawl   CrawlConfig   `toml:"crawl"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config usable without a TOML file; env overrides in the
// server wiring fill in credentials.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DB.Type == "" {
		c.DB.Type = "sqlite"
	}
	if c.DB.DSN == "" && c.DB.Type == "sqlite" {
		c.DB.DSN = "dining.db"
	}
	if c.Geocode.NominatimBaseURL == "" {
		c.Geocode.NominatimBaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocode.UserAgent == "" {
		c.Geocode.UserAgent = "DiningDiscoveryApp/1.0"
	}
	if c.Crawl.RequestTimeoutSecs == 0 {
		c.Crawl.RequestTimeoutSecs = 8
	}
	if c.Crawl.RatePerSec == 0 {
		c.Crawl.RatePerSec = 2.0
	}
	if c.Crawl.MaxPerSource == 0 {
		c.Crawl.MaxPerSource = 20
	}
	if c.Crawl.CacheMaxAgeHours == 0 {
		c.Crawl.CacheMaxAgeHours = 24
	}
	if c.Crawl.SearchRadiusKm == 0 {
		c.Crawl.SearchRadiusKm = 1.5
	}
}
