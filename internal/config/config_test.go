package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 9077, c.Port)
	assert.Equal(t, "claude", c.Agent.Command)
	assert.Equal(t, "claude-sonnet-4-5", c.Agent.Model)
	assert.Equal(t, "http://localhost:9077", c.BaseURL())
}

func TestLoadFromBytes(t *testing.T) {
	yaml := []byte(`
port: 8123
app:
  domain: helm.local
agent:
  command: mycli
  args: ["--stream"]
security:
  allowed_origins:
    - https://app.helm.local
`)
	c, err := LoadFromBytes(yaml)
	require.NoError(t, err)

	assert.Equal(t, 8123, c.Port)
	assert.Equal(t, "mycli", c.Agent.Command)
	assert.Equal(t, []string{"--stream"}, c.Agent.Args)
	assert.Equal(t, []string{"https://app.helm.local"}, c.Security.AllowedOrigins)
	assert.Equal(t, "http://helm.local:8123", c.BaseURL())

	// Fields absent from the file keep their defaults.
	assert.Equal(t, "claude-sonnet-4-5", c.Agent.Model)
}

func TestLoadFromBytesExpandsEnv(t *testing.T) {
	t.Setenv("HELM_TEST_KEY", "sk-test-123")

	c, err := LoadFromBytes([]byte("anthropic:\n  api_key: ${HELM_TEST_KEY}\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", c.Anthropic.APIKey)
}

func TestLoadFromBytesInvalid(t *testing.T) {
	_, err := LoadFromBytes([]byte("port: [not a number"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7001\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7001, c.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
