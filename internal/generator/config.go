package generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives the synthetic contact dataset generator.
type Config struct {
	NumUsers       int     `yaml:"numUsers"`
	NumContacts    int     `yaml:"numContacts"`
	IndirectChance float64 `yaml:"indirectChance"`
	RepeatChance   float64 `yaml:"repeatChance"`
	MaxRunLength   int     `yaml:"maxRunLength"`
	StartTimestamp int64   `yaml:"startTimestamp"`
	TimestampSpan  int64   `yaml:"timestampSpan"`
	MinLat         float64 `yaml:"minLat"`
	MaxLat         float64 `yaml:"maxLat"`
	MinLng         float64 `yaml:"minLng"`
	MaxLng         float64 `yaml:"maxLng"`
	Seed           int64   `yaml:"seed"`
}

// DefaultConfig returns baseline settings producing a dataset with repeated
// encounters and a realistic share of transitive contacts.
func DefaultConfig() Config {
	return Config{
		NumUsers:       200,
		NumContacts:    5000,
		IndirectChance: 0.2,
		RepeatChance:   0.4,
		MaxRunLength:   6,
		StartTimestamp: 1,
		TimestampSpan:  500,
		MinLat:         39,
		MaxLat:         40,
		MinLng:         116,
		MaxLng:         117,
		Seed:           42,
	}
}

// LoadProfile reads a generator profile from a YAML file. Zero-valued fields
// fall back to defaults.
func LoadProfile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read profile %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return cfg, nil
}
