// Package config loads runtime configuration for the valuationdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string   base URL of the HTTP API
//	-a string   address:port of the gRPC health endpoint
//	-i int      online status check interval (seconds)
//	-r string   Redis address for the shared response cache (empty: in-memory)
//	-o string   directory exported reports are written to
//	-d string   path of the local SQLite database
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds. Keys absent from the file keep their defaults:
//
//	{
//	  "api_base_url": "https://desk.example/api",
//	  "service_key": "secret",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "cache_ttl": "5m",
//	  "cache_size": 256,
//	  "redis_addr": "127.0.0.1:6379",
//	  "page_size": 10,
//	  "output_dir": "./reports",
//	  "database_path": "valuationdesk.db",
//	  "image_timeout": "10s",
//	  "pdf_scale": 2,
//	  "pdf_quality": 85,
//	  "valuer_name": "R. Kulkarni",
//	  "valuer_title": "Chartered Engineer",
//	  "valuer_license": "CAT-I/123",
//	  "realisable_percent": 90,
//	  "distress_percent": 80
//	}
package config
