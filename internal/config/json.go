package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ridelinkapp/ridelink/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "set to the zero value", so a partial
// file only overrides what it names.
type JsonConfig struct {
	LocalDSN *string `json:"local_dsn"`
	LogLevel *string `json:"log_level"`

	Identity *struct {
		BaseURL *string `json:"base_url"`
		APIKey  *string `json:"api_key"`
	} `json:"identity"`

	Directory *struct {
		Addr     *string `json:"addr"`
		Password *string `json:"password"`
		DB       *int    `json:"db"`
	} `json:"directory"`

	Media *struct {
		Region    *string `json:"region"`
		Endpoint  *string `json:"endpoint"`
		AccessKey *string `json:"access_key"`
		SecretKey *string `json:"secret_key"`
		Bucket    *string `json:"bucket"`
	} `json:"media"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flags. No flag means no JSON source, which is not an error.
func parseJson(cfg *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	applyJson(cfg, &jc)
	return nil
}

func applyJson(cfg *Config, jc *JsonConfig) {
	setString(&cfg.LocalDSN, jc.LocalDSN)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.Identity != nil {
		setString(&cfg.Identity.BaseURL, jc.Identity.BaseURL)
		setString(&cfg.Identity.APIKey, jc.Identity.APIKey)
	}
	if jc.Directory != nil {
		setString(&cfg.Directory.Addr, jc.Directory.Addr)
		setString(&cfg.Directory.Password, jc.Directory.Password)
		if jc.Directory.DB != nil {
			cfg.Directory.DB = *jc.Directory.DB
		}
	}
	if jc.Media != nil {
		setString(&cfg.Media.Region, jc.Media.Region)
		setString(&cfg.Media.Endpoint, jc.Media.Endpoint)
		setString(&cfg.Media.AccessKey, jc.Media.AccessKey)
		setString(&cfg.Media.SecretKey, jc.Media.SecretKey)
		setString(&cfg.Media.Bucket, jc.Media.Bucket)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
