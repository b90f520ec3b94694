package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when a field is unset.
const (
	DefaultAddr        = ":5000"
	DefaultTemperature = 0.2
)

// Config holds service settings loaded from codeshift.yml plus environment
// overrides.
type Config struct {
	Addr           string            `yaml:"addr,omitempty"`
	Model          string            `yaml:"model,omitempty"`
	Temperature    *float32          `yaml:"temperature,omitempty"`
	APIKey         string            `yaml:"-"` // environment only
	Grammars       []string          `yaml:"grammars,omitempty"`
	Aliases        map[string]string `yaml:"aliases,omitempty"`
	CacheSize      int               `yaml:"cacheSize,omitempty"`
	AllowedOrigins []string          `yaml:"allowedOrigins,omitempty"`
	Exclude        []string          `yaml:"exclude,omitempty"`
	Verbose        bool              `yaml:"verbose,omitempty"`
}

// Load reads codeshift.yml or codeshift.yaml from dir, then a .env file in
// dir (ignored when absent), then the process environment. A missing config
// file yields defaults, not an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}
	for _, name := range []string{"codeshift.yml", "codeshift.yaml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		break
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := strings.TrimSpace(os.Getenv("CODESHIFT_ADDR")); addr != "" {
		cfg.Addr = addr
	} else if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if model := strings.TrimSpace(os.Getenv("CODESHIFT_MODEL")); model != "" {
		cfg.Model = model
	}
	if raw := strings.TrimSpace(os.Getenv("CODESHIFT_TEMPERATURE")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 32); err == nil {
			t := float32(v)
			cfg.Temperature = &t
		}
	}
	cfg.APIKey = firstNonEmpty(
		strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
	)
}

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Temperature == nil {
		t := float32(DefaultTemperature)
		cfg.Temperature = &t
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
