// Package config handles configuration loading and merging for stepnotify.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--strict, --allow-started-ignored, --format, --theme, --log-level)
//  2. Environment variables (STEPNOTIFY_STRICT, STEPNOTIFY_ALLOW_STARTED_IGNORED, ...)
//  3. YAML config file (.stepnotify.yaml in local directory or ~/.config/stepnotify/.stepnotify.yaml)
//  4. Hardcoded defaults
//
// # Policy Switches
//
//   - Strict: undefined, pending and assumption-violated outcomes fail the
//     scenario instead of being reported as ignored
//   - AllowStartedIgnored: the scenario and its first step are started
//     eagerly, so the host may see an ignore after a start
//
// Both are fixed for the whole run once resolved.
//
// # Environment Variables
//
//   - STEPNOTIFY_STRICT: "true"/"1" enables strict mode
//   - STEPNOTIFY_ALLOW_STARTED_IGNORED: "true"/"1" enables eager starts
//   - STEPNOTIFY_FORMAT, STEPNOTIFY_THEME, STEPNOTIFY_LOG_LEVEL
//   - NO_COLOR: any non-empty value forces the mono theme
package config
