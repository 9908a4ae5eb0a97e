package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// config holds the scenario tunables. Every field has a default, so the
// --config file only needs to mention what it overrides.
type config struct {
	Scheduler schedulerConfig `toml:"scheduler"`
	Alertable alertableConfig `toml:"alertable"`
	Queue     queueConfig     `toml:"queue"`
}

type schedulerConfig struct {
	// Sleep durations in milliseconds, labeled 1..n by position.
	SleepsMS []int `toml:"sleeps_ms"`
}

type alertableConfig struct {
	StepMS    int `toml:"step_ms"`
	AlertAtMS int `toml:"alert_at_ms"`
}

type queueConfig struct {
	Capacity  int `toml:"capacity"`
	Producers int `toml:"producers"`
	Items     int `toml:"items"`
}

func defaultConfig() config {
	return config{
		Scheduler: schedulerConfig{
			SleepsMS: []int{1000, 500, 1500, 700, 825, 225},
		},
		Alertable: alertableConfig{
			StepMS:    100,
			AlertAtMS: 950,
		},
		Queue: queueConfig{
			Capacity:  3,
			Producers: 4,
			Items:     25,
		},
	}
}

// loadConfig reads the file named by the --config flag on cmd, if any,
// over the defaults.
func loadConfig(cmd *cobra.Command) (config, error) {
	cfg := defaultConfig()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}
