// Package config resolves run settings from defaults, an optional config
// file, and SURVEYOR_* environment variables, in that precedence order.
// Command-line flags override everything and are applied by the CLI layer.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file name viper searches for (any supported
// extension, e.g. .surveyor.yaml).
const FileName = ".surveyor"

// Settings mirrors the run configuration as it appears in config files.
type Settings struct {
	ShowErrors   bool     `mapstructure:"show_errors"`
	ResolveUnits bool     `mapstructure:"resolve_units"`
	SkipInstall  bool     `mapstructure:"skip_install"`
	Excluded     []string `mapstructure:"excluded"`
	Limit        int      `mapstructure:"limit"`
	MinSeverity  string   `mapstructure:"min_severity"`
	HistoryDB    string   `mapstructure:"history_db"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		MinSeverity: "info",
	}
}

// Load resolves Settings. When path is empty, the config file is searched
// in the current directory and is optional; an explicit path must exist.
func Load(path string) (Settings, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("show_errors", defaults.ShowErrors)
	v.SetDefault("resolve_units", defaults.ResolveUnits)
	v.SetDefault("skip_install", defaults.SkipInstall)
	v.SetDefault("excluded", defaults.Excluded)
	v.SetDefault("limit", defaults.Limit)
	v.SetDefault("min_severity", defaults.MinSeverity)
	v.SetDefault("history_db", defaults.HistoryDB)

	v.SetEnvPrefix("SURVEYOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	return s, nil
}
