// Package config loads tally settings from defaults, a config file, .env and
// TALLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/engine"
)

// EnvPrefix is prepended to environment overrides, e.g. TALLY_ENGINE_FUZZY_THRESHOLD.
const EnvPrefix = "TALLY"

// DefaultDatabasePath is where rules live unless rules.database is set.
const DefaultDatabasePath = "~/.local/share/tally/tally.db"

// EngineConfig mirrors engine.Config in config-file form.
type EngineConfig struct {
	AmountEpsilon      string  `mapstructure:"amount_epsilon"`
	FuzzyThreshold     float64 `mapstructure:"fuzzy_threshold"`
	DuplicateThreshold float64 `mapstructure:"duplicate_threshold"`
	DateWindowDays     int     `mapstructure:"date_window_days"`
	LinkPaymentCycles  bool    `mapstructure:"link_payment_cycles"`
}

// RulesConfig locates the rule database.
type RulesConfig struct {
	Database string `mapstructure:"database"`
}

// PatternsConfig locates an optional registry file; empty means built-in defaults.
type PatternsConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full application configuration.
type Config struct {
	Rules    RulesConfig    `mapstructure:"rules"`
	Patterns PatternsConfig `mapstructure:"patterns"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// SetDefaults registers every key with its default so env overrides apply.
func SetDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()
	v.SetDefault("engine.fuzzy_threshold", def.FuzzyThreshold)
	v.SetDefault("engine.duplicate_threshold", def.DuplicateThreshold)
	v.SetDefault("engine.date_window_days", def.DateWindowDays)
	v.SetDefault("engine.amount_epsilon", def.AmountEpsilon.String())
	v.SetDefault("engine.link_payment_cycles", def.LinkPaymentCycles)
	v.SetDefault("rules.database", DefaultDatabasePath)
	v.SetDefault("patterns.file", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv enables TALLY_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv exports the variables in the given .env files (default ./.env)
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return common.NewConfigurationError(p, "", err)
		}
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, common.NewConfigurationError(source(v), "config", err)
	}
	if _, err := cfg.EngineConfig(); err != nil {
		return nil, common.NewConfigurationError(source(v), "engine", err)
	}
	if _, err := common.ParseLevel(cfg.Logging.Level); err != nil {
		return nil, common.NewConfigurationError(source(v), "logging.level", err)
	}
	cfg.Rules.Database = ExpandPath(cfg.Rules.Database)
	cfg.Patterns.File = ExpandPath(cfg.Patterns.File)
	return &cfg, nil
}

// EngineConfig converts and validates the engine settings.
func (c *Config) EngineConfig() (engine.Config, error) {
	eps := decimal.Zero
	if s := strings.TrimSpace(c.Engine.AmountEpsilon); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return engine.Config{}, fmt.Errorf("%w: amount epsilon %q: %w", common.ErrInvalidConfig, s, err)
		}
		eps = d
	}

	ec := engine.Config{
		FuzzyThreshold:     c.Engine.FuzzyThreshold,
		DuplicateThreshold: c.Engine.DuplicateThreshold,
		DateWindowDays:     c.Engine.DateWindowDays,
		AmountEpsilon:      eps,
		LinkPaymentCycles:  c.Engine.LinkPaymentCycles,
	}
	if err := ec.Validate(); err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}

func source(v *viper.Viper) string {
	if f := v.ConfigFileUsed(); f != "" {
		return f
	}
	return "settings"
}

// ExpandPath resolves a leading "~" to the home directory and expands $VARS.
// SQLite's ":memory:" and other non-path values pass through unchanged.
func ExpandPath(path string) string {
	if path == "" || strings.HasPrefix(path, ":") {
		return path
	}

	rest, tilde := strings.CutPrefix(path, "~")
	if tilde && (rest == "" || rest[0] == '/' || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	return os.ExpandEnv(path)
}
