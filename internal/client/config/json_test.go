package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"api_base_url":          "https://desk.example/api",
		"service_key":           "svc",
		"health_addr":           "desk.example:50051",
		"online_check_interval": "10s",
		"cache_ttl":             "1m",
		"cache_size":            64,
		"redis_addr":            "redis:6379",
		"redis_db":              2,
		"page_size":             25,
		"output_dir":            "/reports",
		"database_path":         "/var/desk.db",
		"image_timeout":         "2s",
		"pdf_scale":             1,
		"pdf_quality":           70,
		"valuer_name":           "R. Kulkarni",
		"valuer_title":          "Chartered Engineer",
		"valuer_license":        "CAT-I/123",
		"realisable_percent":    90,
		"distress_percent":      80,
	})

	t.Run("loads every key", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, Config{
			APIBaseURL: "https://desk.example/api", ServiceKey: "svc", HealthAddr: "desk.example:50051",
			OnlineCheckInterval: 10 * time.Second, CacheTTL: time.Minute, CacheSize: 64,
			RedisAddr: "redis:6379", RedisDB: 2, PageSize: 25, OutputDir: "/reports",
			DatabasePath: "/var/desk.db", ImageTimeout: 2 * time.Second, PDFScale: 1, PDFQuality: 70,
			ValuerName: "R. Kulkarni", ValuerTitle: "Chartered Engineer", ValuerLicense: "CAT-I/123",
			RealisablePercent: 90, DistressPercent: 80,
		}, *cfg)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"page_size": 50})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, 50, cfg.PageSize)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
		assert.Equal(t, "http://127.0.0.1:8080/api", cfg.APIBaseURL)
	})

	t.Run("no flags, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HealthAddr: "defaults:1234", OnlineCheckInterval: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HealthAddr)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
