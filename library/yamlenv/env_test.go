package yamlenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Port *Env[int]    `yaml:"port"`
	Conn *Env[string] `yaml:"conn"`
	On   *Env[bool]   `yaml:"on"`
}

func TestEnv_Literal(t *testing.T) {
	var s sample
	require.NoError(t, yaml.Unmarshal([]byte("port: 8080\nconn: postgres://u:p@h/db\non: true\n"), &s))

	assert.Equal(t, 8080, s.Port.Value)
	assert.Equal(t, "postgres://u:p@h/db", s.Conn.Value)
	assert.True(t, s.On.Value)
	assert.Empty(t, s.Port.Source)
}

func TestEnv_ReferenceAndDefault(t *testing.T) {
	t.Setenv("YAMLENV_TEST_PORT", "9090")

	var s sample
	require.NoError(t, yaml.Unmarshal([]byte("port: ${YAMLENV_TEST_PORT:1}\nconn: ${YAMLENV_TEST_MISSING:fallback}\n"), &s))

	assert.Equal(t, 9090, s.Port.Value)
	assert.Equal(t, "YAMLENV_TEST_PORT", s.Port.Source)
	assert.Equal(t, "fallback", s.Conn.Value)
}

func TestEnv_BadValue(t *testing.T) {
	var s sample
	err := yaml.Unmarshal([]byte("port: abc\n"), &s)
	require.Error(t, err)
}

func TestEnv_GetNil(t *testing.T) {
	var e *Env[string]
	assert.Equal(t, "x", e.Get("x"))
	assert.Equal(t, "y", New("y").Get("x"))
}
