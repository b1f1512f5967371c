// Package config loads sqlbuild CLI settings from sqlbuild.yaml, .env files
// and SQLBUILD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/coregx/sqlbuild/internal/core"
	"github.com/coregx/sqlbuild/internal/dialects"
	"github.com/coregx/sqlbuild/internal/logger"
	"github.com/coregx/sqlbuild/internal/security"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SQLBUILD"

// Output formats accepted by the CLI.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds the CLI configuration.
type Config struct {
	Dialect         string   `mapstructure:"dialect"`
	Strict          bool     `mapstructure:"strict"`
	LogLevel        string   `mapstructure:"log_level"`
	Output          string   `mapstructure:"output"`
	SensitiveFields []string `mapstructure:"sensitive_fields"`
	Audit           string   `mapstructure:"audit"`
}

// New returns a viper instance with sqlbuild defaults, search paths and
// environment binding. fs backs config file lookup.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)

	v.SetConfigName("sqlbuild")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "sqlbuild"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("dialect", "mysql")
	v.SetDefault("strict", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("output", OutputText)
	v.SetDefault("sensitive_fields", []string{})
	v.SetDefault("audit", "none")

	return v
}

// Load reads the config file (explicit path or search paths) and .env
// values, then decodes the result. Precedence, highest first: bound flags,
// environment, .env, config file, defaults.
func Load(v *viper.Viper, fs afero.Fs, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := loadDotEnv(fs, ".env"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv exports SQLBUILD_* entries of a .env file that are not already
// set in the environment.
func loadDotEnv(fs afero.Fs, name string) error {
	f, err := fs.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	for key, value := range env {
		if !strings.HasPrefix(key, EnvPrefix+"_") {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every setting has a usable value.
func (c *Config) Validate() error {
	if _, err := c.DialectID(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := security.ParseAuditLevel(c.Audit); err != nil {
		return err
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", c.Output)
	}
	return nil
}

// DialectID resolves the configured dialect name.
func (c *Config) DialectID() (dialects.ID, error) {
	id, ok := dialects.Parse(c.Dialect)
	if !ok {
		return dialects.Unknown, fmt.Errorf("%w: %q", core.ErrUnsupportedDialect, c.Dialect)
	}
	return id, nil
}

// BuilderOptions returns the builder options for this configuration. Build
// events, and the audit trail when enabled, are logged as text to w.
func (c *Config) BuilderOptions(w io.Writer) []core.Option {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}

	opts := []core.Option{
		core.WithStrict(c.Strict),
		core.WithLogger(logger.NewTextLogger(w, level)),
	}
	if len(c.SensitiveFields) > 0 {
		opts = append(opts, core.WithSensitiveFields(c.SensitiveFields...))
	}
	if audit, err := security.ParseAuditLevel(c.Audit); err == nil && audit != security.AuditNone {
		auditLog := slog.New(slog.NewTextHandler(w, nil))
		opts = append(opts, core.WithAuditor(security.NewAuditor(auditLog, audit)))
	}
	return opts
}
