package config

import (
	"fmt"

	"github.com/spf13/viper"

	"rangepool/internal/scenario"
)

// LoadScenario reads a scenario definition from a YAML or JSON file.
func LoadScenario(path string) (scenario.Scenario, error) {
	if path == "" {
		return scenario.Scenario{}, fmt.Errorf("scenario path required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return scenario.Scenario{}, fmt.Errorf("read scenario: %w", err)
	}

	var scn scenario.Scenario
	if err := v.Unmarshal(&scn); err != nil {
		return scenario.Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	return scn, nil
}
