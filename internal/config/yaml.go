package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// YAML renders the configuration as a YAML document
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
