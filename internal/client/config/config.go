package config

import "time"

// Config holds runtime settings for the valuationdesk CLI.
type Config struct {
	APIBaseURL          string
	ServiceKey          string
	HealthAddr          string
	OnlineCheckInterval time.Duration
	CacheTTL            time.Duration
	CacheSize           int
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	PageSize            int
	OutputDir           string
	DatabasePath        string
	ImageTimeout        time.Duration
	PDFScale            int
	PDFQuality          int
	ValuerName          string
	ValuerTitle         string
	ValuerLicense       string
	RealisablePercent   float64
	DistressPercent     float64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheTTL = 5 * time.Minute
	c.CacheSize = 256
	c.PageSize = 10
	c.OutputDir = "."
	c.DatabasePath = "valuationdesk.db"
	c.ImageTimeout = 10 * time.Second
	c.PDFScale = 2
	c.PDFQuality = 85
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
