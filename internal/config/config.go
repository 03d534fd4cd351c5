package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const (
	DefaultPath      = "config.json"
	DefaultModel     = "gemini-2.5-flash-image-preview"
	DefaultOutputDir = "images"
)

var ErrMalformed = errors.New("malformed config file")

type Config struct {
	APIKey    string `json:"api_key"`
	APIURL    string `json:"api_url"`
	Model     string `json:"model"`
	OutputDir string `json:"output_dir"`
}

func Default() Config {
	return Config{
		Model:     DefaultModel,
		OutputDir: DefaultOutputDir,
	}
}

// Load reads path. The bool reports whether values came from the file; a
// missing file yields Default() and false.
func Load(path string) (Config, bool, error) {
	path = normalizePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), false, nil
		}
		return Config{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrMalformed, path, err)
	}
	return withDefaults(cfg), true, nil
}

func Save(path string, cfg Config) error {
	return runstore.WriteJSON(normalizePath(path), withDefaults(cfg))
}

func (c Config) Ready() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APIURL) != ""
}

func (c Config) Redacted() Config {
	out := c
	out.APIKey = redactKey(c.APIKey)
	return out
}

// Set updates one field by its JSON key name.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "api_key":
		c.APIKey = value
	case "api_url":
		c.APIURL = value
	case "model":
		c.Model = value
	case "output_dir":
		c.OutputDir = value
	default:
		return fmt.Errorf("unknown config key %q (expected api_key, api_url, model, or output_dir)", key)
	}
	return nil
}

func withDefaults(cfg Config) Config {
	out := cfg
	if strings.TrimSpace(out.Model) == "" {
		out.Model = DefaultModel
	}
	if strings.TrimSpace(out.OutputDir) == "" {
		out.OutputDir = DefaultOutputDir
	}
	return out
}

func redactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPath
	}
	return path
}
