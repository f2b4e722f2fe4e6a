// Copyright (C) 2025 Crash Override, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the FSF, either version 3 of the License, or (at your option) any later version.
// See the LICENSE file in the root of this repository for full license text or
// visit: <https://www.gnu.org/licenses/gpl-3.0.html>.

// Package config provides the global configuration for Artemis.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/crashappsec/artemis/pkg/schemas"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the structure for the global configuration file for Artemis.
// It is loaded from a config file at startup time, and values can be overridden
// by environment variables. The config file is expected to be in YAML format.
// Environment variables are expected to be prefixed with "ARTEMIS_", all capital
// and use underscores to separate nested keys. For example, the key
// "api.rateLimit" can be overridden by the environment variable "ARTEMIS_API_RATELIMIT".
type Config struct {
	// Environment is the environment that Artemis is running in.
	Environment string `json:"environment" yaml:"environment" mapstructure:"environment"`

	// API is the configuration for the Artemis API client.
	API struct {
		// URL is the base URL of the API, including its namespace.
		URL string `json:"url" yaml:"url" mapstructure:"url"`
		// Key is a static API key. KeyFile takes precedence when both are set.
		Key string `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
		// KeyFile is a file containing the API key. It is read again every KeyRefresh.
		KeyFile    string        `json:"keyFile,omitempty" yaml:"keyFile,omitempty" mapstructure:"keyFile"`
		KeyRefresh time.Duration `json:"keyRefresh" yaml:"keyRefresh" mapstructure:"keyRefresh"`
		// Timeout bounds a single HTTP request.
		Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
		// RateLimit is the number of requests per second, zero disables the limit.
		RateLimit float64 `json:"rateLimit" yaml:"rateLimit" mapstructure:"rateLimit"`
		RateBurst int     `json:"rateBurst" yaml:"rateBurst" mapstructure:"rateBurst"`
		// RetryMaxElapsed bounds the retries of idempotent requests, zero disables retries.
		RetryMaxElapsed time.Duration `json:"retryMaxElapsed" yaml:"retryMaxElapsed" mapstructure:"retryMaxElapsed"`
	} `json:"api" yaml:"api" mapstructure:"api"`

	// Scans is the configuration for loading scans.
	Scans struct {
		// ReloadInterval is the time between two reloads of a page with scans in progress.
		ReloadInterval time.Duration `json:"reloadInterval" yaml:"reloadInterval" mapstructure:"reloadInterval"`
		// BatchSize is the number of scan details fetched at once.
		BatchSize    int `json:"batchSize" yaml:"batchSize" mapstructure:"batchSize"`
		ItemsPerPage int `json:"itemsPerPage" yaml:"itemsPerPage" mapstructure:"itemsPerPage"`
		// MaxItemsPerPage is the largest page that can be requested.
		MaxItemsPerPage int `json:"maxItemsPerPage" yaml:"maxItemsPerPage" mapstructure:"maxItemsPerPage"`
		// CurrentScanFile remembers the last queued scan across invocations.
		// An empty value keeps it in memory.
		CurrentScanFile string `json:"currentScanFile" yaml:"currentScanFile" mapstructure:"currentScanFile"`
	} `json:"scans" yaml:"scans" mapstructure:"scans"`

	Notifications struct {
		// Delay is the time between a session expiring and the login redirect.
		Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
	} `json:"notifications" yaml:"notifications" mapstructure:"notifications"`

	// Logging is the configuration for the logger.
	Logging struct {
		// Level is the logging level.
		Level  string `json:"level" yaml:"level" mapstructure:"level"`
		Format string `json:"format" yaml:"format" mapstructure:"format"`
	} `json:"logging" yaml:"logging" mapstructure:"logging"`

	// Server is the configuration for the local status server.
	Server struct {
		Port int `json:"port" yaml:"port" mapstructure:"port"`
		// Token, when set, is required as a bearer token on every /api route.
		Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
	} `json:"server" yaml:"server" mapstructure:"server"`
}

// State is the global configuration state for Artemis.
var State Config

// have to use something that will most likely not be a
// key anywhere in the config file. By default viper uses "."
// as a delimiter, which would split the keys of
// application metadata maps into nested maps.
const delimiter = "%"

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(delimiter))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/artemis/")
	v.AddConfigPath("$HOME/.artemis")
	v.AddConfigPath(".")

	if configPath, exists := os.LookupEnv(schemas.EnvVarConfigPath); exists {
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix("artemis")
	v.SetEnvKeyReplacer(strings.NewReplacer(delimiter, "_"))

	v.SetDefault("environment", EnvProduction)

	v.SetDefault("api%url", "http://localhost:8000/api")
	v.SetDefault("api%key", "")
	v.SetDefault("api%keyFile", "")
	v.SetDefault("api%keyRefresh", "5m")
	v.SetDefault("api%timeout", "30s")
	v.SetDefault("api%rateLimit", 0)
	v.SetDefault("api%rateBurst", 1)
	v.SetDefault("api%retryMaxElapsed", "30s")

	v.SetDefault("scans%reloadInterval", "30s")
	v.SetDefault("scans%batchSize", 10)
	v.SetDefault("scans%itemsPerPage", 10)
	v.SetDefault("scans%maxItemsPerPage", 200)
	v.SetDefault("scans%currentScanFile", "")

	v.SetDefault("notifications%delay", "6s")

	v.SetDefault("logging%level", "info")
	v.SetDefault("logging%format", "json")

	v.SetDefault("server%port", 3001)
	v.SetDefault("server%token", "")

	v.AutomaticEnv()
	return v
}

// durationHook decodes duration strings such as "30s".
func durationHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t == reflect.TypeOf(time.Duration(0)) && f.Kind() == reflect.String {
		return time.ParseDuration(data.(string))
	}
	return data, nil
}

func load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return cfg, fmt.Errorf("error reading config: %w", err)
		}
		zap.L().Debug("config file not found, using defaults")
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationHook)); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.API.URL == "":
		return fmt.Errorf("api url is required")
	case c.Scans.ReloadInterval <= 0:
		return fmt.Errorf("scans reload interval must be positive, got %s", c.Scans.ReloadInterval)
	case c.Scans.BatchSize < 1:
		return fmt.Errorf("scans batch size must be at least 1, got %d", c.Scans.BatchSize)
	case c.Scans.ItemsPerPage < 1 || c.Scans.ItemsPerPage > c.Scans.MaxItemsPerPage:
		return fmt.Errorf("scans items per page must be between 1 and %d, got %d",
			c.Scans.MaxItemsPerPage, c.Scans.ItemsPerPage)
	}
	return nil
}

var global *viper.Viper

// Init loads the configuration into [State] and initializes the global logger.
func Init() error {
	global = newViper()
	cfg, err := load(global)
	if err != nil {
		return err
	}
	State = cfg
	InitLogger(State.Logging.Level, State.Logging.Format,
		zap.Any("build_metadata", map[string]string{
			"version":    Version,
			"build_time": BuildTime,
			"commit":     Commit,
		}))
	return nil
}

// WriteConfig writes the loaded configuration as YAML to w. Secrets are
// masked.
func WriteConfig(w io.Writer) error {
	if global == nil {
		return fmt.Errorf("config is not initialized")
	}
	settings := global.AllSettings()
	for _, path := range [][]string{{"api", "key"}, {"server", "token"}} {
		section, ok := settings[path[0]].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := section[path[1]].(string); ok && v != "" {
			section[path[1]] = "********"
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return err
	}
	return enc.Close()
}
