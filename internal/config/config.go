package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration, loaded from YAML with
// environment variable expansion ($VAR / ${VAR}).
type Config struct {
	Port int `yaml:"port"`

	App struct {
		BaseURL string `yaml:"base_url"`
		Domain  string `yaml:"domain"`
	} `yaml:"app"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Agent struct {
		// Command to launch the CLI agent subprocess, e.g. "claude".
		Command string `yaml:"command"`
		// Extra arguments appended to the agent command line.
		Args []string `yaml:"args"`
		// Default model passed to providers when a chat has no override.
		Model string `yaml:"model"`
		// Working directory for agent subprocesses. Empty means inherit.
		WorkDir string `yaml:"work_dir"`
		// Upper bound on one turn, e.g. "30m". Expired turns are
		// cancelled through the normal interrupt path.
		TurnTimeout string `yaml:"turn_timeout"`
	} `yaml:"agent"`

	Anthropic struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"anthropic"`

	Security struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"security"`
}

// Load reads a YAML config file from path, expanding environment variables.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes with environment variable expansion
func LoadFromBytes(data []byte) (Config, error) {
	c := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	var c Config
	c.Port = 9077
	c.App.Domain = "localhost"
	c.Database.SQLitePath = filepath.Join(".", "data", "helm.db")
	c.Agent.Command = "claude"
	c.Agent.Model = "claude-sonnet-4-5"
	c.Agent.TurnTimeout = "30m"
	c.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	return c
}

// BaseURL returns the externally visible base URL for the server.
func (c Config) BaseURL() string {
	if c.App.BaseURL != "" {
		return c.App.BaseURL
	}
	domain := c.App.Domain
	if domain == "" {
		domain = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", domain, c.Port)
}
