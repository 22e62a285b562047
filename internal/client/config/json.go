package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/valuationdesk/internal/flagx"
	"github.com/dmitrijs2005/valuationdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-able fields let a partial file leave the defaults in place.
type JsonConfig struct {
	APIBaseURL          string          `json:"api_base_url"`
	ServiceKey          string          `json:"service_key"`
	HealthAddr          string          `json:"health_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	CacheTTL            *timex.Duration `json:"cache_ttl"`
	CacheSize           int             `json:"cache_size"`
	RedisAddr           string          `json:"redis_addr"`
	RedisPassword       string          `json:"redis_password"`
	RedisDB             int             `json:"redis_db"`
	PageSize            int             `json:"page_size"`
	OutputDir           string          `json:"output_dir"`
	DatabasePath        string          `json:"database_path"`
	ImageTimeout        *timex.Duration `json:"image_timeout"`
	PDFScale            int             `json:"pdf_scale"`
	PDFQuality          int             `json:"pdf_quality"`
	ValuerName          string          `json:"valuer_name"`
	ValuerTitle         string          `json:"valuer_title"`
	ValuerLicense       string          `json:"valuer_license"`
	RealisablePercent   float64         `json:"realisable_percent"`
	DistressPercent     float64         `json:"distress_percent"`
}

// parseJson overlays cfg with values from the JSON file named by -c/-config.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.ServiceKey, jc.ServiceKey)
	setString(&cfg.HealthAddr, jc.HealthAddr)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setString(&cfg.OutputDir, jc.OutputDir)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.ValuerName, jc.ValuerName)
	setString(&cfg.ValuerTitle, jc.ValuerTitle)
	setString(&cfg.ValuerLicense, jc.ValuerLicense)

	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.CacheTTL != nil {
		cfg.CacheTTL = jc.CacheTTL.Duration
	}
	if jc.ImageTimeout != nil {
		cfg.ImageTimeout = jc.ImageTimeout.Duration
	}
	if jc.CacheSize > 0 {
		cfg.CacheSize = jc.CacheSize
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.PDFScale > 0 {
		cfg.PDFScale = jc.PDFScale
	}
	if jc.PDFQuality > 0 && jc.PDFQuality <= 100 {
		cfg.PDFQuality = jc.PDFQuality
	}
	if jc.RealisablePercent > 0 {
		cfg.RealisablePercent = jc.RealisablePercent
	}
	if jc.DistressPercent > 0 {
		cfg.DistressPercent = jc.DistressPercent
	}
	cfg.RedisDB = jc.RedisDB
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
