package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ShowConfig holds configuration for the show command.
type ShowConfig struct {
	Snapshot string
	PGDSN    string
	Pool     string
	LogLevel string
}

// LoadShow merges config file, environment variables, and flags into ShowConfig.
func LoadShow(cfgFile string, flags *pflag.FlagSet) (ShowConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("snapshot", "./data/snapshot.json")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return ShowConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ShowConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return ShowConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := ShowConfig{
		Snapshot: v.GetString("snapshot"),
		PGDSN:    v.GetString("pg-dsn"),
		Pool:     v.GetString("pool"),
		LogLevel: v.GetString("log-level"),
	}

	return cfg, nil
}
