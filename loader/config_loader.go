package loader

import (
	"fmt"
	"os"

	"github.com/synthfin/synthfin/fraud"
	"gopkg.in/yaml.v3"
)

// Generation defaults applied when the config file omits a field.
const (
	DefaultSeed     int64 = 42
	DefaultRowCount       = 1000
)

// GenerationConfig is the resolved per-run configuration.
type GenerationConfig struct {
	RandomSeed     int64
	RowCount       int
	FraudScenarios fraud.Scenarios
}

type generationFile struct {
	RandomSeed     *int64          `yaml:"random_seed"`
	RowCount       *int            `yaml:"row_count"`
	FraudScenarios fraud.Scenarios `yaml:"fraud_scenarios"`
}

// LoadGenerationConfig reads a YAML run config, applies defaults and
// validates the fraud scenario tree at load time.
func LoadGenerationConfig(filename string) (*GenerationConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var gf generationFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("unmarshalling config YAML: %w", err)
	}

	cfg := &GenerationConfig{
		RandomSeed:     DefaultSeed,
		RowCount:       DefaultRowCount,
		FraudScenarios: gf.FraudScenarios,
	}
	if gf.RandomSeed != nil {
		cfg.RandomSeed = *gf.RandomSeed
	}
	if gf.RowCount != nil {
		cfg.RowCount = *gf.RowCount
	}

	if cfg.RowCount < 0 {
		return nil, fmt.Errorf("row_count must be non-negative, got %d", cfg.RowCount)
	}
	if err := cfg.FraudScenarios.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
