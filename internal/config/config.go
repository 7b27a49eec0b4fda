package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// StoreConfig is the record-storage connection.
type StoreConfig struct {
	URL    string `koanf:"url"`
	APIKey string `koanf:"api_key"`
}

type Config struct {
	Port string `koanf:"port"`

	// Auth
	APIKey string `koanf:"api_key"`

	// Schema/transform registry root
	SchemaDir string `koanf:"schema_dir"`

	// Record storage
	Store StoreConfig `koanf:"store"`

	// Worker pool
	WorkerCount        int `koanf:"worker_count"`
	MaxQueueSize       int `koanf:"max_queue_size"`
	MaxConcurrentStore int `koanf:"max_concurrent_store"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `koanf:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `koanf:"pdf_fallback_pdftotext"`

	// Logging
	LogLevel string `koanf:"log_level"`
}

// Load merges YAML (if present) with env vars (prefix `DOCTRAN_`,
// delimiter `__`, e.g. DOCTRAN_STORE__URL).
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	_ = k.Load(env.Provider("DOCTRAN_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "DOCTRAN_")), "__", ".")
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Port == "" {
		c.Port = "8090"
	}
	if c.SchemaDir == "" {
		c.SchemaDir = "schemas"
	}
	if c.Store.URL == "" {
		c.Store.URL = "http://localhost:8080"
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxConcurrentStore <= 0 {
		c.MaxConcurrentStore = 10
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800 // 50MB
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Store.APIKey == "" {
		return fmt.Errorf("store.api_key is required")
	}
	if c.SchemaDir == "" {
		return fmt.Errorf("schema_dir is required")
	}
	return nil
}
