package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"familybudget/internal/analysis"
)

// LoadThresholds returns the default heuristic constants overlaid with the
// values present in the YAML file at path. An empty path yields the defaults.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadThresholds(path string) (analysis.Thresholds, error) {
	th := analysis.DefaultThresholds()
	if path == "" {
		return th, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return analysis.Thresholds{}, fmt.Errorf("read thresholds: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&th); err != nil && !errors.Is(err, io.EOF) {
		return analysis.Thresholds{}, fmt.Errorf("parse thresholds %s: %w", path, err)
	}
	if err := th.Validate(); err != nil {
		return analysis.Thresholds{}, fmt.Errorf("thresholds %s: %w", path, err)
	}
	return th, nil
}
