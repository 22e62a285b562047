package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/valuationdesk/internal/flagx"
	"github.com/dmitrijs2005/valuationdesk/internal/timex"
)

// JsonConfig is the JSON file DTO. Durations use timex.Duration so both
// "24h" and integer nanoseconds are accepted. Absent keys keep the values
// from earlier sources.
type JsonConfig struct {
	HTTPAddr                     string          `json:"http_addr"`
	HealthAddrGRPC               string          `json:"health_addr_grpc"`
	DatabaseDSN                  string          `json:"database_dsn"`
	MongoURI                     string          `json:"mongo_uri"`
	MongoDatabase                string          `json:"mongo_database"`
	SecretKey                    string          `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3Bucket                     string          `json:"s3_bucket"`
	S3Region                     string          `json:"s3_region"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
	PresignValidityDuration      *timex.Duration `json:"presign_validity_duration"`
	ClientURL                    string          `json:"client_url"`
	CORSOrigins                  []string        `json:"cors_origins"`
	BodyLimit                    int64           `json:"body_limit"`
	AdminClientID                string          `json:"admin_client_id"`
	AdminUsername                string          `json:"admin_username"`
	AdminPassword                string          `json:"admin_password"`
}

// parseJson overlays config with the JSON file named by -c/-config. It
// panics when the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&config.HTTPAddr:       c.HTTPAddr,
		&config.HealthAddrGRPC: c.HealthAddrGRPC,
		&config.DatabaseDSN:    c.DatabaseDSN,
		&config.MongoURI:       c.MongoURI,
		&config.MongoDatabase:  c.MongoDatabase,
		&config.SecretKey:      c.SecretKey,
		&config.S3RootUser:     c.S3RootUser,
		&config.S3RootPassword: c.S3RootPassword,
		&config.S3Bucket:       c.S3Bucket,
		&config.S3Region:       c.S3Region,
		&config.S3BaseEndpoint: c.S3BaseEndpoint,
		&config.ClientURL:      c.ClientURL,
		&config.AdminClientID:  c.AdminClientID,
		&config.AdminUsername:  c.AdminUsername,
		&config.AdminPassword:  c.AdminPassword,
	} {
		if v != "" {
			*dst = v
		}
	}

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.PresignValidityDuration != nil {
		config.PresignValidityDuration = c.PresignValidityDuration.Duration
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.BodyLimit > 0 {
		config.BodyLimit = c.BodyLimit
	}
}
