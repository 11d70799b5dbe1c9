package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile
// and then via NYX_* environment variables.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Model    ModelConfig    `json:"model" yaml:"model"`
	Sandbox  SandboxConfig  `json:"sandbox" yaml:"sandbox"`
	Context  ContextConfig  `json:"context" yaml:"context"`
	Decoding DecodingConfig `json:"decoding" yaml:"decoding"`
	Runtime  RuntimeConfig  `json:"runtime" yaml:"runtime"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

type ModelConfig struct {
	ModelPath     string `json:"model_path" yaml:"model_path"`         // CBOR n-gram artifact
	TokenizerPath string `json:"tokenizer_path" yaml:"tokenizer_path"` // BPE vocab + merges JSON

	// Inference slots
	Replicas   int `json:"replicas" yaml:"replicas"`       // Default: 1 (serialized access)
	QueueLimit int `json:"queue_limit" yaml:"queue_limit"` // Default: 16 waiting requests
}

type SandboxConfig struct {
	Root            string   `json:"root" yaml:"root"`
	AllowedCommands []string `json:"allowed_commands" yaml:"allowed_commands"`
	MaxFileSize     int64    `json:"max_file_size" yaml:"max_file_size"` // Default: 1MB

	// Command Execution
	ExecTimeoutSeconds int   `json:"exec_timeout_seconds" yaml:"exec_timeout_seconds"` // Default: 5
	MaxExecOutputSize  int64 `json:"max_exec_output_size" yaml:"max_exec_output_size"` // Default: 64KB
	GracefulShutdownMs int   `json:"graceful_shutdown_ms" yaml:"graceful_shutdown_ms"` // Default: 500

	// Search & List
	MaxSearchResults int `json:"max_search_results" yaml:"max_search_results"` // Default: 20
	MaxListEntries   int `json:"max_list_entries" yaml:"max_list_entries"`     // Default: 1000
}

type ContextConfig struct {
	MaxTurns          int `json:"max_turns" yaml:"max_turns"`                     // Default: 10
	MaxContextTokens  int `json:"max_context_tokens" yaml:"max_context_tokens"`   // Default: 400
	SessionTTLSeconds int `json:"session_ttl_seconds" yaml:"session_ttl_seconds"` // Default: 1800
}

type DecodingConfig struct {
	Strategy      string   `json:"strategy" yaml:"strategy"` // greedy | beam | sampling
	MaxNewTokens  int      `json:"max_new_tokens" yaml:"max_new_tokens"`
	BeamWidth     int      `json:"beam_width" yaml:"beam_width"`
	LengthPenalty float64  `json:"length_penalty" yaml:"length_penalty"`
	Temperature   float64  `json:"temperature" yaml:"temperature"`
	TopK          int      `json:"top_k" yaml:"top_k"` // 0 disables
	TopP          float64  `json:"top_p" yaml:"top_p"` // 1.0 disables
	Seed          int64    `json:"seed" yaml:"seed"`
	StopSequences []string `json:"stop_sequences" yaml:"stop_sequences"`
}

type RuntimeConfig struct {
	RequestTimeoutSeconds int `json:"request_timeout_seconds" yaml:"request_timeout_seconds"` // Default: 30
}

type LoggingConfig struct {
	Level string `json:"level" yaml:"level"` // debug | info | warn | error
	JSON  bool   `json:"json" yaml:"json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			ModelPath:     "data/models/model.cbor",
			TokenizerPath: "data/models/tokenizer.json",
			Replicas:      1,
			QueueLimit:    16,
		},
		Sandbox: SandboxConfig{
			Root: ".",
			AllowedCommands: []string{
				"ls", "pwd", "echo", "cat", "date", "whoami", "hostname", "uname",
			},
			MaxFileSize:        1024 * 1024,
			ExecTimeoutSeconds: 5,
			MaxExecOutputSize:  64 * 1024,
			GracefulShutdownMs: 500,
			MaxSearchResults:   20,
			MaxListEntries:     1000,
		},
		Context: ContextConfig{
			MaxTurns:          10,
			MaxContextTokens:  400,
			SessionTTLSeconds: 1800,
		},
		Decoding: DecodingConfig{
			Strategy:      "sampling",
			MaxNewTokens:  64,
			BeamWidth:     5,
			LengthPenalty: 0.6,
			Temperature:   1.0,
			TopK:          0,
			TopP:          0.9,
			Seed:          0,
		},
		Runtime: RuntimeConfig{
			RequestTimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
