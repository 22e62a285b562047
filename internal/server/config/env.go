package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/valuationdesk/internal/flagx"
)

// parseEnv loads the dotenv file named by -env (default ".env") into the
// process environment and overlays the variables that are set. A missing
// default file is ignored; a missing explicit file panics.
func parseEnv(cfg *Config) {
	file := flagx.EnvFileFlags()
	explicit := file != ""
	if !explicit {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.HealthAddrGRPC = getEnv("HEALTH_ADDR", cfg.HealthAddrGRPC)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.SecretKey = getEnv("JWT_SECRET", cfg.SecretKey)
	cfg.AccessTokenValidityDuration = getEnv("ACCESS_TOKEN_TTL", cfg.AccessTokenValidityDuration)
	cfg.RefreshTokenValidityDuration = getEnv("REFRESH_TOKEN_TTL", cfg.RefreshTokenValidityDuration)
	cfg.S3RootUser = getEnv("S3_ROOT_USER", cfg.S3RootUser)
	cfg.S3RootPassword = getEnv("S3_ROOT_PASSWORD", cfg.S3RootPassword)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", cfg.S3BaseEndpoint)
	cfg.ClientURL = getEnv("CLIENT_URL", cfg.ClientURL)
	cfg.BodyLimit = getEnv("BODY_LIMIT", cfg.BodyLimit)
	cfg.AdminClientID = getEnv("ADMIN_CLIENT_ID", cfg.AdminClientID)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
}

// getEnv returns the variable converted to the type of def, or def when it
// is unset. Unparsable values panic.
func getEnv[T string | int64 | time.Duration](name string, def T) T {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return def
	}

	var value any
	switch any(def).(type) {
	case time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			panic(err)
		}
		value = d
	case int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			panic(err)
		}
		value = n
	default:
		value = raw
	}
	return value.(T)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
