package config

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// QuoteConfig holds configuration for the quote command. Numeric inputs
// stay as strings so an unset value is distinguishable from zero.
type QuoteConfig struct {
	SqrtPriceX96 string
	Tick         string
	LowerTick    string
	UpperTick    string
	Liquidity    string
	Amount0      string
	Amount1      string
	Decimals0    int
	Decimals1    int
	LogLevel     string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("decimals0", 18)
	v.SetDefault("decimals1", 18)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return QuoteConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return QuoteConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return QuoteConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := QuoteConfig{
		SqrtPriceX96: v.GetString("sqrt-price-x96"),
		Tick:         v.GetString("tick"),
		LowerTick:    v.GetString("lower-tick"),
		UpperTick:    v.GetString("upper-tick"),
		Liquidity:    v.GetString("liquidity"),
		Amount0:      v.GetString("amount0"),
		Amount1:      v.GetString("amount1"),
		Decimals0:    v.GetInt("decimals0"),
		Decimals1:    v.GetInt("decimals1"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}

// ParseTick parses an optional tick value.
func ParseTick(input string) (int32, bool, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, false, nil
	}
	val, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("invalid tick %q: %w", input, err)
	}
	return int32(val), true, nil
}

// ParseAmount parses an optional base-10 integer amount.
func ParseAmount(input string) (*big.Int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	val, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", input)
	}
	return val, nil
}
