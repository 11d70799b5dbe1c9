package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AllDefaults_Pass(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"Zero Replicas", func(c *Config) { c.Model.Replicas = 0 }, "model.replicas"},
		{"Empty Root", func(c *Config) { c.Sandbox.Root = " " }, "sandbox.root"},
		{"Command With Args", func(c *Config) { c.Sandbox.AllowedCommands = []string{"ls -la"} }, "bare command name"},
		{"Command With Path", func(c *Config) { c.Sandbox.AllowedCommands = []string{"/bin/ls"} }, "bare command name"},
		{"Zero File Size", func(c *Config) { c.Sandbox.MaxFileSize = 0 }, "sandbox.max_file_size"},
		{"Zero Exec Timeout", func(c *Config) { c.Sandbox.ExecTimeoutSeconds = 0 }, "exec_timeout_seconds"},
		{"Zero Max Turns", func(c *Config) { c.Context.MaxTurns = 0 }, "context.max_turns"},
		{"Unknown Strategy", func(c *Config) { c.Decoding.Strategy = "magic" }, "decoding.strategy"},
		{"Negative Max New Tokens", func(c *Config) { c.Decoding.MaxNewTokens = -1 }, "max_new_tokens"},
		{"Zero Temperature", func(c *Config) { c.Decoding.Temperature = 0 }, "temperature"},
		{"TopP Above One", func(c *Config) { c.Decoding.TopP = 1.5 }, "top_p"},
		{"Zero Timeout", func(c *Config) { c.Runtime.RequestTimeoutSeconds = 0 }, "request_timeout_seconds"},
		{"Bad Log Level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
