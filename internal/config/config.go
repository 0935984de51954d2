// Package config loads the run configuration, including the
// construct-to-contrast mapping consumed by the across-construct stage. The
// mapping is always passed down explicitly so tests can substitute arbitrary
// maps without touching shared state.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full run configuration.
type Config struct {
	InputDir       string              `mapstructure:"input_dir"`
	OutputDir      string              `mapstructure:"output_dir"`
	Subjects       []string            `mapstructure:"subjects"`
	AtlasVolume    string              `mapstructure:"atlas_volume"`
	AtlasLabels    string              `mapstructure:"atlas_labels"`
	ExclusionsFile string              `mapstructure:"exclusions_file"`
	Workers        int                 `mapstructure:"workers"`
	SaveMatrices   bool                `mapstructure:"save_matrices"`
	Constructs     map[string][]string `mapstructure:"constructs"`
}

// Load reads a config file and fills unset fields with defaults. An empty
// path yields the pure defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("workers", 0)
	v.SetDefault("save_matrices", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Constructs == nil {
		cfg.Constructs = DefaultConstructMap()
	}
	return &cfg, nil
}

// DefaultConstructMap returns the default mapping from cognitive constructs
// to the contrasts believed to engage them.
func DefaultConstructMap() map[string][]string {
	return map[string][]string{
		"Active Maintenance": {
			"task-nBack_contrast-match-mismatch",
			"task-nBack_contrast-twoBack-oneBack",
		},
		"Flexible Updating": {
			"task-cuedTS_contrast-cue_switch_cost",
			"task-spatialTS_contrast-cue_switch_cost",
		},
		"Monitoring": {
			"task-nBack_contrast-high-load-low-load",
			"task-nBack_contrast-match-mismatch",
		},
		"Interference Control": {
			"task-flanker_contrast-incongruent-congruent",
			"task-directedForgetting_contrast-neg-con",
		},
		"Goal Selection": {
			"task-cuedTS_contrast-cue_switch_cost",
			"task-spatialTS_contrast-cue_switch_cost",
			"task-stopSignal_contrast-go",
			"task-goNogo_contrast-go",
		},
		"Updating Representation and Maintenance": {
			"task-nBack_contrast-match-mismatch",
		},
		"Response Selection": {
			"task-flanker_contrast-incongruent-congruent",
			"task-stopSignal_contrast-go",
			"task-goNogo_contrast-go",
		},
		"Inhibition Suppression": {
			"task-stopSignal_contrast-stop_success",
			"task-stopSignal_contrast-stop_success-go",
			"task-stopSignal_contrast-stop_success-stop_failure",
			"task-goNogo_contrast-nogo",
			"task-directedForgetting_contrast-pos-neg",
		},
		"Task Coordination": {
			"task-cuedTS_contrast-task_switch_cue_switch-task_stay_cue_stay",
			"task-spatialTS_contrast-task_switch_cue_switch-task_stay_cue_stay",
		},
		"Task Baseline": {
			"task-cuedTS_contrast-task-baseline",
			"task-directedForgetting_contrast-task-baseline",
			"task-flanker_contrast-task-baseline",
			"task-goNogo_contrast-task-baseline",
			"task-nBack_contrast-task-baseline",
			"task-shapeMatching_contrast-task-baseline",
			"task-spatialTS_contrast-task-baseline",
			"task-stopSignal_contrast-task-baseline",
		},
		"Response Time": {
			"task-cuedTS_contrast-response_time",
			"task-directedForgetting_contrast-response_time",
			"task-flanker_contrast-response_time",
			"task-goNogo_contrast-response_time",
			"task-nBack_contrast-response_time",
			"task-shapeMatching_contrast-response_time",
			"task-spatialTS_contrast-response_time",
			"task-stopSignal_contrast-response_time",
		},
	}
}
