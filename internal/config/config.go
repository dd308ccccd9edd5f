// Package config loads a YAML configuration file, overlaying it onto
// fpconfig.DefaultConfig().
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/media-luna/fingerprint/internal/fpconfig"
	"github.com/media-luna/fingerprint/internal/fpkind"
)

// yamlConfig mirrors fpconfig.Config's yaml tags but with pointer fields so
// an absent key in the file leaves the default untouched.
type yamlConfig struct {
	WindowSize           *int `yaml:"window_size"`
	AnalysisStride       *int `yaml:"analysis_stride"`
	PitchSteps           *int `yaml:"pitch_steps"`
	SubfingerprintLength *int `yaml:"subfingerprint_length"`
	TopWavelets          *int `yaml:"top_wavelets"`
	ProcessingSampleRate *int `yaml:"processing_sample_rate"`
	RecordingSampleRate  *int `yaml:"recording_sample_rate"`
}

// Load reads the YAML file at path and overlays it onto
// fpconfig.DefaultConfig(), validating the result.
func Load(path string) (fpconfig.Config, error) {
	cfg := fpconfig.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fpkind.Wrap(fpkind.SourceFailure, err, "reading config file")
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return cfg, fpkind.Wrap(fpkind.ArgumentInvalid, err, "parsing config file")
	}

	overlay(&cfg, y)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overlay(cfg *fpconfig.Config, y yamlConfig) {
	if y.WindowSize != nil {
		cfg.WindowSize = *y.WindowSize
	}
	if y.AnalysisStride != nil {
		cfg.AnalysisStride = *y.AnalysisStride
	}
	if y.PitchSteps != nil {
		cfg.PitchSteps = *y.PitchSteps
	}
	if y.SubfingerprintLength != nil {
		cfg.SubfingerprintLength = *y.SubfingerprintLength
	}
	if y.TopWavelets != nil {
		cfg.TopWavelets = *y.TopWavelets
	}
	if y.ProcessingSampleRate != nil {
		cfg.ProcessingSampleRate = *y.ProcessingSampleRate
	}
	if y.RecordingSampleRate != nil {
		cfg.RecordingSampleRate = *y.RecordingSampleRate
	}
}
