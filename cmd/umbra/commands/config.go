package commands

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

const (
	defaultDir        = ".umbra"
	defaultConfigFile = "config.yaml"
	defaultKeystore   = "identity.json"
)

// Config is the on-disk CLI configuration.
type Config struct {
	Keystore string    `yaml:"keystore"`
	Curve    string    `yaml:"curve"`
	Workers  int       `yaml:"workers"`
	Log      LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig keeps everything under home/.umbra.
func DefaultConfig(home string) Config {
	return Config{
		Keystore: filepath.Join(home, defaultDir, defaultKeystore),
		Curve:    "ed25519",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file at path and
// the environment. An empty path means home/.umbra/config.yaml, which may be
// absent; an explicit path must exist.
func LoadConfig(path, home string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig(home)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, defaultDir, defaultConfigFile)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		merge(&cfg, parsed)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, err
	}

	if err := applyEnvOverrides(&cfg, getenv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.Keystore != "" {
		dst.Keystore = src.Keystore
	}
	if src.Curve != "" {
		dst.Curve = src.Curve
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	env := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	if v := env("UMBRA_KEYSTORE"); v != "" {
		cfg.Keystore = v
	}
	if v := env("UMBRA_CURVE"); v != "" {
		cfg.Curve = v
	}
	if v := env("UMBRA_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("UMBRA_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := env("UMBRA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("UMBRA_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	return nil
}

// loadDotEnv adds the variables in path to the process environment without
// replacing ones already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
