package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "nyx"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "NYX_"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a production Loader using the real filesystem and environment
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}, getenv: os.Getenv}
}

// NewLoaderWithFS creates a Loader with a custom filesystem and environment (for testing)
func NewLoaderWithFS(fs FileSystem, getenv func(string) string) *Loader {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Loader{fs: fs, getenv: getenv}
}

// Load reads configuration from path, or from ~/.config/nyx/config.json when
// path is empty, and merges it over the defaults. NYX_* environment variables
// are applied last. A missing default file is not an error; a missing explicit
// path is.
//
// JSON files may contain comments and trailing commas. Files ending in .yaml or
// .yml are parsed as YAML.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		homeDir, err := l.fs.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, ".config", ConfigDir, ConfigFile)
		}
	}

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, &ParseError{Path: path, Cause: err}
			}
		case os.IsNotExist(err) && !explicit:
			// Use defaults if file doesn't exist
		default:
			return nil, err
		}
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode parses data directly into the default config struct so that present
// keys overwrite defaults (even if zero) while missing keys are left untouched.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	}
}

// applyEnv overlays NYX_* environment variables onto cfg.
func (l *Loader) applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := l.getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := l.getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &EnvError{Key: EnvPrefix + key, Value: v, Cause: err}
		}
		*dst = n
		return nil
	}

	str("MODEL_PATH", &cfg.Model.ModelPath)
	str("TOKENIZER_PATH", &cfg.Model.TokenizerPath)
	str("SANDBOX_ROOT", &cfg.Sandbox.Root)
	str("DECODING_STRATEGY", &cfg.Decoding.Strategy)
	str("LOG_LEVEL", &cfg.Logging.Level)

	if v := l.getenv(EnvPrefix + "ALLOWED_COMMANDS"); v != "" {
		cfg.Sandbox.AllowedCommands = splitList(v)
	}
	if v := l.getenv(EnvPrefix + "MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &EnvError{Key: EnvPrefix + "MAX_FILE_SIZE", Value: v, Cause: err}
		}
		cfg.Sandbox.MaxFileSize = n
	}

	for key, dst := range map[string]*int{
		"MAX_TURNS":               &cfg.Context.MaxTurns,
		"MAX_CONTEXT_TOKENS":      &cfg.Context.MaxContextTokens,
		"MAX_NEW_TOKENS":          &cfg.Decoding.MaxNewTokens,
		"BEAM_WIDTH":              &cfg.Decoding.BeamWidth,
		"REQUEST_TIMEOUT_SECONDS": &cfg.Runtime.RequestTimeoutSeconds,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseError is returned when a config file cannot be decoded.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config %s: %v", e.Path, e.Cause)
}
func (e *ParseError) Unwrap() error { return e.Cause }

// EnvError is returned when an environment override has an invalid value.
type EnvError struct {
	Key   string
	Value string
	Cause error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Cause)
}
func (e *EnvError) Unwrap() error { return e.Cause }

// Load is a convenience function using the default loader
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
