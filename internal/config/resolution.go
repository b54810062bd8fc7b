package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dkoosis/stepnotify/pkg/engine"
)

// CliFlags holds the values of command-line flags and whether each was set.
type CliFlags struct {
	Strict              bool
	AllowStartedIgnored bool
	Format              string
	Theme               string
	LogLevel            string
	LogFormat           string
	Validate            bool

	StrictSet              bool
	AllowStartedIgnoredSet bool
	ValidateSet            bool
}

// ResolvedConfig is the final configuration after applying priority rules.
type ResolvedConfig struct {
	Strict              bool
	AllowStartedIgnored bool
	Format              string
	Theme               string
	LogLevel            string
	LogFormat           string
	Validate            bool

	// Resolution metadata: "cli", "env", "file" or "default".
	StrictSource              string
	AllowStartedIgnoredSource string
	ConfigPath                string
}

// Policy returns the engine policy selected by the two switches.
func (r *ResolvedConfig) Policy() engine.Policy {
	return engine.Policy{Strict: r.Strict, AllowStartedIgnored: r.AllowStartedIgnored}
}

// ResolveConfig loads the config file and resolves every value with the
// order CLI > env > file > default.
func ResolveConfig(cli CliFlags) (*ResolvedConfig, error) {
	appCfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return Resolve(cli, appCfg)
}

// Resolve applies CLI and environment overrides on top of appCfg.
func Resolve(cli CliFlags, appCfg *AppConfig) (*ResolvedConfig, error) {
	resolved := &ResolvedConfig{
		Format:                    appCfg.Format,
		Theme:                     appCfg.Theme,
		LogLevel:                  appCfg.LogLevel,
		LogFormat:                 appCfg.LogFormat,
		Validate:                  appCfg.Validate,
		StrictSource:              "default",
		AllowStartedIgnoredSource: "default",
		ConfigPath:                appCfg.Path,
	}

	resolved.Strict, resolved.StrictSource = resolveBool(
		cli.Strict, cli.StrictSet, "STEPNOTIFY_STRICT", appCfg.Strict)
	resolved.AllowStartedIgnored, resolved.AllowStartedIgnoredSource = resolveBool(
		cli.AllowStartedIgnored, cli.AllowStartedIgnoredSet, "STEPNOTIFY_ALLOW_STARTED_IGNORED", appCfg.AllowStartedIgnored)

	resolved.Format = resolveString(cli.Format, "STEPNOTIFY_FORMAT", resolved.Format)
	resolved.Theme = resolveString(cli.Theme, "STEPNOTIFY_THEME", resolved.Theme)
	resolved.LogLevel = resolveString(cli.LogLevel, "STEPNOTIFY_LOG_LEVEL", resolved.LogLevel)
	resolved.LogFormat = resolveString(cli.LogFormat, "STEPNOTIFY_LOG_FORMAT", resolved.LogFormat)
	if resolved.LogFormat == "" {
		resolved.LogFormat = DefaultLogFormat
	}

	if cli.ValidateSet {
		resolved.Validate = cli.Validate
	}

	// NO_COLOR wins over any theme choice
	if os.Getenv("NO_COLOR") != "" {
		resolved.Theme = "mono"
	}

	if err := validateResolvedConfig(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return resolved, nil
}

func resolveBool(cliVal, cliSet bool, envKey string, fileVal *bool) (bool, string) {
	if cliSet {
		return cliVal, "cli"
	}
	if v := getEnvBool(envKey); v != nil {
		return *v, "env"
	}
	if fileVal != nil {
		return *fileVal, "file"
	}
	return false, "default"
}

func resolveString(cliVal, envKey, fallback string) string {
	if cliVal != "" {
		return cliVal
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set to a parseable value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

func validateResolvedConfig(cfg *ResolvedConfig) error {
	validFormats := map[string]bool{"auto": true, "terminal": true, "llm": true, "json": true, "ndjson": true}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("invalid format %q (must be: auto, terminal, llm, json, ndjson)", cfg.Format)
	}

	validThemes := map[string]bool{"default": true, "orca": true, "mono": true}
	if !validThemes[cfg.Theme] {
		return fmt.Errorf("invalid theme %q (must be: default, orca, mono)", cfg.Theme)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "off": true}
	if !validLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level %q (must be: debug, info, warn, error, off)", cfg.LogLevel)
	}

	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q (must be: console, json)", cfg.LogFormat)
	}
	return nil
}
