// Package config loads runner settings from flags, environment
// variables, and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the command-line runner's settings.
type Config struct {
	// StateDir is the LevelDB directory for pool state. Empty keeps
	// everything in memory.
	StateDir string
	// Tape is the path of the scenario file to replay.
	Tape string
	// Governance lists the accounts holding the governance role.
	Governance []string
	LogLevel   string
}

// Load merges config file, environment variables, and flags.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return Config{
		StateDir:   v.GetString("state-dir"),
		Tape:       v.GetString("tape"),
		Governance: v.GetStringSlice("governance"),
		LogLevel:   v.GetString("log-level"),
	}, nil
}
