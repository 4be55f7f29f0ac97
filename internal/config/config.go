// Package config loads cinescope settings from defaults, an optional YAML
// file and CINESCOPE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"cinescope/internal/logging"
	"cinescope/internal/storage"
	"cinescope/internal/validation"
)

// ConfigPathEnvVar names a config file to use when --config is not given.
const ConfigPathEnvVar = "CINESCOPE_CONFIG"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"cinescope.yaml",
	"cinescope.yml",
	"/etc/cinescope/config.yaml",
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Storage storage.Config `koanf:"storage"`
	Catalog CatalogConfig  `koanf:"catalog"`
	Backup  BackupConfig   `koanf:"backup"`
	Log     LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"gte=1,lte=65535"`
	// APIToken guards /api. Empty disables auth.
	APIToken string `koanf:"api_token"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CatalogConfig struct {
	// Path to a json, yaml or toml dataset. Empty means an empty catalog.
	Path string `koanf:"path"`
}

type BackupConfig struct {
	Dir string `koanf:"dir" validate:"required"`
	// Interval between scheduled backups; 0 disables the scheduler.
	Interval   time.Duration `koanf:"interval" validate:"gte=0"`
	MaxBackups int           `koanf:"max_backups" validate:"gte=1"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format     string `koanf:"format" validate:"oneof=json console auto"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
	Compress   bool   `koanf:"compress"`
}

// Logging converts the section into a logging.Config.
func (l LogConfig) Logging() logging.Config {
	return logging.Config{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Storage: storage.Config{
			Backend: storage.BackendSQLite,
			Path:    "./data/cinescope.db",
		},
		Backup: BackupConfig{
			Dir:        "./data/backups",
			Interval:   24 * time.Hour,
			MaxBackups: 4,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "auto",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration. An explicit path must exist; otherwise
// the env var and DefaultConfigPaths are tried and a missing file is fine.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("CINESCOPE_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"cinescope_host":             "server.host",
	"cinescope_port":             "server.port",
	"cinescope_api_token":        "server.api_token",
	"cinescope_storage_backend":  "storage.backend",
	"cinescope_storage_path":     "storage.path",
	"cinescope_catalog_path":     "catalog.path",
	"cinescope_backup_dir":       "backup.dir",
	"cinescope_backup_interval":  "backup.interval",
	"cinescope_max_backups":      "backup.max_backups",
	"cinescope_log_level":        "log.level",
	"cinescope_log_format":       "log.format",
	"cinescope_log_file":         "log.file",
	"cinescope_log_max_size_mb":  "log.max_size_mb",
	"cinescope_log_max_backups":  "log.max_backups",
	"cinescope_log_max_age_days": "log.max_age_days",
	"cinescope_log_compress":     "log.compress",
}

// envTransformFunc maps CINESCOPE_* names onto koanf paths. Unknown names
// are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
