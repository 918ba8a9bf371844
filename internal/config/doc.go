// Package config loads runtime configuration for the ridelink CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment variables prefixed with RIDELINK_ (see env tags on Config).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "local_dsn": "file:ridelink.db",
//	  "log_level": "debug",
//	  "identity": {"base_url": "https://identitytoolkit.googleapis.com", "api_key": "..."},
//	  "directory": {"addr": "127.0.0.1:6379", "password": "", "db": 0},
//	  "media": {"region": "us-east-1", "endpoint": "", "access_key": "", "secret_key": "", "bucket": "ridelink-media"}
//	}
//
// Environment variables follow the struct layout, e.g. RIDELINK_LOCAL_DSN,
// RIDELINK_REDIS_ADDR, RIDELINK_IDENTITY_API_KEY, RIDELINK_S3_BUCKET_NAME.
package config
