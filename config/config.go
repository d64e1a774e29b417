// Package config loads the configuration of the gomck command from yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gomck/framework"
)

type Config struct {
	Verification VerificationConfig `yaml:"verification"`
	Logging      LoggingConfig      `yaml:"logging"`
	Service      ServiceConfig      `yaml:"service"`
}

// Configures the framework.
type VerificationConfig struct {
	Decay          bool `yaml:"decay"`
	AssumeInherent bool `yaml:"assume_inherent"`
	// Successors computed concurrently, 0 uses the number of CPUs.
	Workers int `yaml:"workers"`
	// Negative means no limit.
	MaxRefinements int `yaml:"max_refinements"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

type ServiceConfig struct {
	Address string `yaml:"address"`
}

func Default() *Config {
	return &Config{
		Verification: VerificationConfig{
			MaxRefinements: -1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Service: ServiceConfig{
			Address: "localhost:12111",
		},
	}
}

// Loads the configuration from a yaml file, starting from the defaults.
// A missing file yields the defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: failed to read %v: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %v: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: failed to write %v: %w", path, err)
	}
	return nil
}

func envBool(name string, target *bool) error {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("config: %v: %w", name, err)
	}
	*target = parsed
	return nil
}

func envInt(name string, target *int) error {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %v: %w", name, err)
	}
	*target = parsed
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if err := envBool("GOMCK_DECAY", &c.Verification.Decay); err != nil {
		return err
	}
	if err := envBool("GOMCK_ASSUME_INHERENT", &c.Verification.AssumeInherent); err != nil {
		return err
	}
	if err := envInt("GOMCK_WORKERS", &c.Verification.Workers); err != nil {
		return err
	}
	if err := envInt("GOMCK_MAX_REFINEMENTS", &c.Verification.MaxRefinements); err != nil {
		return err
	}
	if level := os.Getenv("GOMCK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if err := envBool("GOMCK_LOG_DEVELOPMENT", &c.Logging.Development); err != nil {
		return err
	}
	if address := os.Getenv("GOMCK_ADDRESS"); address != "" {
		c.Service.Address = address
	}
	return nil
}

// The framework options the verification section describes.
func (c *Config) FrameworkOptions(logger *zap.Logger) []framework.Option {
	opts := []framework.Option{framework.WithLogger(logger)}
	if c.Verification.Decay {
		opts = append(opts, framework.WithDecay())
	}
	if c.Verification.AssumeInherent {
		opts = append(opts, framework.AssumeInherent())
	}
	if c.Verification.Workers > 0 {
		opts = append(opts, framework.WithWorkers(c.Verification.Workers))
	}
	return opts
}
