// Package config handles light-evm.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "light-evm.toml"

type Config struct {
	VM  VMConfig  `toml:"vm"`
	Log LogConfig `toml:"log"`
	API APIConfig `toml:"api"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type VMConfig struct {
	Trace bool `toml:"trace"`
	Step  bool `toml:"step"`

	// StepKey is the line that advances a single-step run.
	StepKey  string `toml:"step_key"`
	MaxSteps uint64 `toml:"max_steps"`
	MaxStack int    `toml:"max_stack"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type APIConfig struct {
	ListenAddr string `toml:"listen_addr"`
	MaxSteps   uint64 `toml:"max_steps"`
	MaxStack   int    `toml:"max_stack"`
}

func Default() *Config {
	return &Config{
		VM: VMConfig{
			Trace:   true,
			Step:    true,
			StepKey: "p",
		},
		Log: LogConfig{
			Level:       "info",
			Development: true,
		},
		API: APIConfig{
			ListenAddr: ":8080",
			MaxSteps:   10000,
			MaxStack:   1024,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads path when given. Otherwise it loads DefaultFile from
// dir if it exists and falls back to Default.
func LoadOrDefault(path, dir string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	candidate := filepath.Join(dir, DefaultFile)
	if _, err := os.Stat(candidate); err == nil {
		return Load(candidate)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot stat %s: %w", candidate, err)
	}
	return Default(), nil
}

func (c *Config) Validate() error {
	if _, err := c.Log.ZapLevel(); err != nil {
		return err
	}
	if c.VM.MaxStack < 0 {
		return fmt.Errorf("vm.max_stack must not be negative, got %d", c.VM.MaxStack)
	}
	if c.API.MaxStack < 0 {
		return fmt.Errorf("api.max_stack must not be negative, got %d", c.API.MaxStack)
	}
	if c.VM.Step && c.VM.StepKey == "" {
		return errors.New("vm.step_key must be set when stepping")
	}
	return nil
}

func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return lvl, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}
