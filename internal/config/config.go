package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and the
// user config dir.
const FileName = ".stepnotify.yaml"

// AppConfig represents the contents of .stepnotify.yaml.
// Pointer booleans distinguish "unset" from "false".
type AppConfig struct {
	Strict              *bool  `yaml:"strict"`
	AllowStartedIgnored *bool  `yaml:"allow_started_ignored"`
	Format              string `yaml:"format,omitempty"`
	Theme               string `yaml:"theme,omitempty"`
	LogLevel            string `yaml:"log_level,omitempty"`
	LogFormat           string `yaml:"log_format,omitempty"`
	Validate            bool   `yaml:"validate"`

	// Path is the file the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

// Constants for default values.
const (
	DefaultFormat    = "auto"
	DefaultTheme     = "default"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "console"
)

// LoadConfig loads .stepnotify.yaml, falling back to defaults when no file
// is found. A file that exists but cannot be read or parsed is an error.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		Format:    DefaultFormat,
		Theme:     DefaultTheme,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}

	path := getConfigPath()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	// Merge YAML settings onto the defaults
	cfg.Strict = fileCfg.Strict
	cfg.AllowStartedIgnored = fileCfg.AllowStartedIgnored
	if fileCfg.Format != "" {
		cfg.Format = fileCfg.Format
	}
	if fileCfg.Theme != "" {
		cfg.Theme = fileCfg.Theme
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogFormat != "" {
		cfg.LogFormat = fileCfg.LogFormat
	}
	cfg.Validate = fileCfg.Validate
	cfg.Path = path
	return cfg, nil
}

// getConfigPath finds .stepnotify.yaml: local directory first, then the
// user config dir.
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	// UserConfigDir can fail or return an unusable root when HOME is unset.
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, "stepnotify", FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}
