package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MeasureItem is one subjective scale presented at a measurement point.
type MeasureItem struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type"` // "likert" or "vas"
	Min         int    `yaml:"min"`
	Max         int    `yaml:"max"`
	MinLabel    string `yaml:"min_label,omitempty"`
	MaxLabel    string `yaml:"max_label,omitempty"`
	Required    bool   `yaml:"required"`
}

// MeasureSet holds all subjective measure items for a run.
type MeasureSet struct {
	Items []MeasureItem `yaml:"items"`
}

// MeasureResponse is a participant's answer to one item at one measurement
// point.
type MeasureResponse struct {
	Point  string  `json:"point"` // label of the measurement point, e.g. "Sub_M 2"
	ItemID string  `json:"itemId"`
	Value  float64 `json:"value"`
}

// LoadMeasures reads and parses a measures YAML file.
func LoadMeasures(path string) (*MeasureSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read measures file: %w", err)
	}

	var set MeasureSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal measures YAML: %w", err)
	}

	return &set, nil
}
