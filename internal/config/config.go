// Package config loads codeclock settings from a YAML file with
// CODECLOCK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alexanderramin/codeclock/internal/health"
	"github.com/alexanderramin/codeclock/internal/tracker"
)

// EnvPrefix prefixes every environment override, e.g.
// CODECLOCK_INACTIVITY_TIMEOUT_SECONDS or CODECLOCK_HEALTH_MODAL.
const EnvPrefix = "CODECLOCK"

type Config struct {
	InactivityTimeoutSeconds int               `yaml:"inactivity_timeout_seconds" mapstructure:"inactivity_timeout_seconds"`
	FocusTimeoutSeconds      int               `yaml:"focus_timeout_seconds" mapstructure:"focus_timeout_seconds"`
	SaveIntervalSeconds      int               `yaml:"save_interval_seconds" mapstructure:"save_interval_seconds"`
	BranchPollSeconds        int               `yaml:"branch_poll_seconds" mapstructure:"branch_poll_seconds"`
	Health                   HealthConfig      `yaml:"health" mapstructure:"health"`
	Diagnostics              DiagnosticsConfig `yaml:"diagnostics" mapstructure:"diagnostics"`
	Server                   ServerConfig      `yaml:"server" mapstructure:"server"`
	Database                 DatabaseConfig    `yaml:"database" mapstructure:"database"`
	LogLevel                 string            `yaml:"log_level" mapstructure:"log_level"`
}

type HealthConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	Modal          bool `yaml:"modal" mapstructure:"modal"`
	EyeRestMinutes int  `yaml:"eye_rest_minutes" mapstructure:"eye_rest_minutes"`
	StretchMinutes int  `yaml:"stretch_minutes" mapstructure:"stretch_minutes"`
	BreakMinutes   int  `yaml:"break_minutes" mapstructure:"break_minutes"`
}

// DiagnosticsConfig controls the JSON-lines event log.
type DiagnosticsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

type ServerConfig struct {
	Listen  string `yaml:"listen" mapstructure:"listen"`
	Metrics bool   `yaml:"metrics" mapstructure:"metrics"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// DefaultDir is ~/.codeclock, or the working directory when there is no
// home directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codeclock"
	}
	return filepath.Join(home, ".codeclock")
}

func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

func DefaultConfig() Config {
	dir := DefaultDir()
	return Config{
		InactivityTimeoutSeconds: 300,
		FocusTimeoutSeconds:      60,
		SaveIntervalSeconds:      5,
		BranchPollSeconds:        10,
		Health: HealthConfig{
			Enabled:        true,
			Modal:          true,
			EyeRestMinutes: 20,
			StretchMinutes: 45,
			BreakMinutes:   120,
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: false,
			Dir:     filepath.Join(dir, "logs"),
		},
		Server: ServerConfig{
			Listen:  "127.0.0.1:7717",
			Metrics: true,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "codeclock.db"),
		},
		LogLevel: "info",
	}
}

// Load reads path (missing is fine) and applies environment overrides. On a
// malformed file it returns the defaults together with the error, so the
// caller can warn and carry on.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return DefaultConfig(), fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to reach it in Unmarshal.
	d := DefaultConfig()
	v.SetDefault("inactivity_timeout_seconds", d.InactivityTimeoutSeconds)
	v.SetDefault("focus_timeout_seconds", d.FocusTimeoutSeconds)
	v.SetDefault("save_interval_seconds", d.SaveIntervalSeconds)
	v.SetDefault("branch_poll_seconds", d.BranchPollSeconds)
	v.SetDefault("health.enabled", d.Health.Enabled)
	v.SetDefault("health.modal", d.Health.Modal)
	v.SetDefault("health.eye_rest_minutes", d.Health.EyeRestMinutes)
	v.SetDefault("health.stretch_minutes", d.Health.StretchMinutes)
	v.SetDefault("health.break_minutes", d.Health.BreakMinutes)
	v.SetDefault("diagnostics.enabled", d.Diagnostics.Enabled)
	v.SetDefault("diagnostics.dir", d.Diagnostics.Dir)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("log_level", d.LogLevel)
	return v
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Normalize replaces non-positive intervals and empty required values with
// their defaults. It returns one message per substitution.
func (c *Config) Normalize() []string {
	d := DefaultConfig()
	var fixed []string
	ints := []struct {
		name string
		v    *int
		def  int
	}{
		{"inactivity_timeout_seconds", &c.InactivityTimeoutSeconds, d.InactivityTimeoutSeconds},
		{"focus_timeout_seconds", &c.FocusTimeoutSeconds, d.FocusTimeoutSeconds},
		{"save_interval_seconds", &c.SaveIntervalSeconds, d.SaveIntervalSeconds},
		{"branch_poll_seconds", &c.BranchPollSeconds, d.BranchPollSeconds},
		{"health.eye_rest_minutes", &c.Health.EyeRestMinutes, d.Health.EyeRestMinutes},
		{"health.stretch_minutes", &c.Health.StretchMinutes, d.Health.StretchMinutes},
		{"health.break_minutes", &c.Health.BreakMinutes, d.Health.BreakMinutes},
	}
	for _, f := range ints {
		if *f.v <= 0 {
			fixed = append(fixed, fmt.Sprintf("%s=%d is not positive, using %d", f.name, *f.v, f.def))
			*f.v = f.def
		}
	}
	strs := []struct {
		name string
		v    *string
		def  string
	}{
		{"server.listen", &c.Server.Listen, d.Server.Listen},
		{"database.path", &c.Database.Path, d.Database.Path},
		{"diagnostics.dir", &c.Diagnostics.Dir, d.Diagnostics.Dir},
	}
	for _, f := range strs {
		if strings.TrimSpace(*f.v) == "" {
			fixed = append(fixed, fmt.Sprintf("%s is empty, using %s", f.name, f.def))
			*f.v = f.def
		}
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		fixed = append(fixed, fmt.Sprintf("log_level %q is unknown, using %s", c.LogLevel, d.LogLevel))
		c.LogLevel = d.LogLevel
	}
	return fixed
}

// Tracker converts the timing keys for the tracker.
func (c Config) Tracker() tracker.Config {
	return tracker.Config{
		InactivityTimeout:  seconds(c.InactivityTimeoutSeconds),
		FocusTimeout:       seconds(c.FocusTimeoutSeconds),
		SaveInterval:       seconds(c.SaveIntervalSeconds),
		BranchPollInterval: seconds(c.BranchPollSeconds),
	}
}

func (c Config) HealthSettings() health.Settings {
	return health.Settings{
		Enabled: c.Health.Enabled,
		Modal:   c.Health.Modal,
		EyeRest: time.Duration(c.Health.EyeRestMinutes) * time.Minute,
		Stretch: time.Duration(c.Health.StretchMinutes) * time.Minute,
		Break:   time.Duration(c.Health.BreakMinutes) * time.Minute,
	}
}

// SlogLevel maps log_level to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
