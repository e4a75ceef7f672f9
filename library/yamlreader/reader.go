package yamlreader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type validator interface {
	Validate() error
}

// NewConfig читает YAML-файл path в новый T. Если T реализует
// Validate() error, он вызывается перед возвратом.
func NewConfig[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	cfg := new(T)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	if v, ok := any(cfg).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}

	return cfg, nil
}
