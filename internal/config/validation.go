package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Model validation
	if c.Model.Replicas < 1 {
		errs = append(errs, "model.replicas must be >= 1")
	}
	if c.Model.QueueLimit < 0 {
		errs = append(errs, "model.queue_limit must be >= 0")
	}

	// Sandbox validation
	if strings.TrimSpace(c.Sandbox.Root) == "" {
		errs = append(errs, "sandbox.root must not be empty")
	}
	for _, name := range c.Sandbox.AllowedCommands {
		if name == "" || strings.ContainsAny(name, " \t\n/") {
			errs = append(errs, fmt.Sprintf("sandbox.allowed_commands entry %q must be a bare command name", name))
		}
	}
	if c.Sandbox.MaxFileSize < 1 {
		errs = append(errs, "sandbox.max_file_size must be >= 1")
	}
	if c.Sandbox.ExecTimeoutSeconds < 1 {
		errs = append(errs, "sandbox.exec_timeout_seconds must be >= 1")
	}
	if c.Sandbox.MaxExecOutputSize < 1 {
		errs = append(errs, "sandbox.max_exec_output_size must be >= 1")
	}
	if c.Sandbox.GracefulShutdownMs < 1 {
		errs = append(errs, "sandbox.graceful_shutdown_ms must be >= 1")
	}
	if c.Sandbox.MaxSearchResults < 1 {
		errs = append(errs, "sandbox.max_search_results must be >= 1")
	}
	if c.Sandbox.MaxListEntries < 1 {
		errs = append(errs, "sandbox.max_list_entries must be >= 1")
	}

	// Context validation
	if c.Context.MaxTurns < 1 {
		errs = append(errs, "context.max_turns must be >= 1")
	}
	if c.Context.MaxContextTokens < 1 {
		errs = append(errs, "context.max_context_tokens must be >= 1")
	}
	if c.Context.SessionTTLSeconds < 0 {
		errs = append(errs, "context.session_ttl_seconds must be >= 0")
	}

	// Decoding validation
	switch c.Decoding.Strategy {
	case "greedy", "beam", "sampling":
	default:
		errs = append(errs, fmt.Sprintf("decoding.strategy %q must be one of greedy, beam, sampling", c.Decoding.Strategy))
	}
	if c.Decoding.MaxNewTokens < 0 {
		errs = append(errs, "decoding.max_new_tokens must be >= 0")
	}
	if c.Decoding.BeamWidth < 1 {
		errs = append(errs, "decoding.beam_width must be >= 1")
	}
	if c.Decoding.LengthPenalty < 0 {
		errs = append(errs, "decoding.length_penalty must be >= 0")
	}
	if c.Decoding.Temperature <= 0 {
		errs = append(errs, "decoding.temperature must be > 0")
	}
	if c.Decoding.TopK < 0 {
		errs = append(errs, "decoding.top_k must be >= 0")
	}
	if c.Decoding.TopP <= 0 || c.Decoding.TopP > 1 {
		errs = append(errs, "decoding.top_p must be in (0, 1]")
	}

	// Runtime validation
	if c.Runtime.RequestTimeoutSeconds < 1 {
		errs = append(errs, "runtime.request_timeout_seconds must be >= 1")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
