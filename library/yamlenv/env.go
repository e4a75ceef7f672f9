// Package yamlenv позволяет задать YAML-скаляр литералом или ссылкой на
// переменную окружения вида ${NAME} или ${NAME:default}.
package yamlenv

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var reference = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(.*))?\}$`)

// Env разрешённое значение конфигурации
type Env[T any] struct {
	Value T
	// Source переменная окружения, из которой взято значение. Пусто для литералов.
	Source string
}

// New возвращает Env с литеральным значением.
func New[T any](v T) *Env[T] {
	return &Env[T]{Value: v}
}

func (e *Env[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("yamlenv: line %d: expected scalar, got kind %d", node.Line, node.Kind)
	}

	raw := node.Value
	if m := reference.FindStringSubmatch(raw); m != nil {
		e.Source = m[1]
		v, ok := os.LookupEnv(m[1])
		if !ok {
			v = m[2]
		}
		raw = v
	}

	resolved := yaml.Node{Kind: yaml.ScalarNode, Value: raw}
	if err := resolved.Decode(&e.Value); err != nil {
		return fmt.Errorf("yamlenv: line %d: %w", node.Line, err)
	}

	return nil
}

// Get возвращает значение или def, если e равен nil.
func (e *Env[T]) Get(def T) T {
	if e == nil {
		return def
	}
	return e.Value
}
