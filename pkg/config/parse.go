package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParsePackYAML parses a Pack from YAML bytes and validates it.
// This is used for APIs where the pack is provided as payload (not via filesystem).
func ParsePackYAML(data []byte) (*Pack, error) {
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pack yaml: %w", err)
	}

	if err := validatePack(&pack); err != nil {
		return nil, fmt.Errorf("invalid pack: %w", err)
	}

	return &pack, nil
}

// ParsePackYAMLString parses a Pack from a YAML string and validates it.
func ParsePackYAMLString(yamlText string) (*Pack, error) {
	return ParsePackYAML([]byte(yamlText))
}
