package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration
type Config struct {
	// Merge policy applied during schema unification
	Merge MergeConfig `yaml:"merge"`

	// Engine configuration
	Engine EngineConfig `yaml:"engine"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// MergeConfig is the merge policy: what to skip and how to name fields
// whose declared name drifted between versions.
type MergeConfig struct {
	// ExcludedMessages lists fully qualified message names to skip entirely
	ExcludedMessages []string `yaml:"excluded_messages"`

	// ExcludedFields lists individual fields to skip
	ExcludedFields []FieldExclusion `yaml:"excluded_fields"`

	// Renames pins the canonical name for fields renamed across versions
	Renames []FieldRename `yaml:"renames"`

	// Resolutions acknowledges expected per-field type conflicts
	Resolutions []ConflictResolution `yaml:"resolutions"`
}

// FieldExclusion names one field of one message.
type FieldExclusion struct {
	Message string `yaml:"message"`
	Field   string `yaml:"field"`
}

// FieldRename pins the unified name for a field number whose declared
// name differs between versions.
type FieldRename struct {
	Message       string `yaml:"message"`
	Number        int32  `yaml:"number"`
	CanonicalName string `yaml:"canonical_name"`
}

// ConflictResolution declares the conflict type a field is expected to
// carry. A declared conflict is treated as acknowledged: the merger skips
// its conflict warning for the field, and warns instead when the detected
// conflict differs from the declared one.
type ConflictResolution struct {
	Message  string `yaml:"message"`
	Field    string `yaml:"field"`
	Conflict string `yaml:"conflict"`
}

// EngineConfig holds unification engine settings
type EngineConfig struct {
	// CacheSize bounds the merged-schema LRU cache (entries)
	CacheSize int `yaml:"cache_size"`

	// MetricsEnabled registers Prometheus collectors
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// LogLevel: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			CacheSize:      256,
			MetricsEnabled: true,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load loads configuration from the environment, reading the policy file
// named by PROTOUNIFY_POLICY_FILE when set.
func Load() (*Config, error) {
	if path := getEnv("PROTOUNIFY_POLICY_FILE", ""); path != "" {
		return LoadFile(path)
	}

	cfg := DefaultConfig()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from a YAML policy file, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML policy document over the defaults and applies
// environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing policy: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides
func applyEnv(cfg *Config) {
	if size := getEnvInt("PROTOUNIFY_CACHE_SIZE", 0); size > 0 {
		cfg.Engine.CacheSize = size
	}
	if enabled := getEnv("PROTOUNIFY_METRICS_ENABLED", ""); enabled != "" {
		cfg.Engine.MetricsEnabled = strings.ToLower(enabled) == "true" || enabled == "1"
	}
	if level := getEnv("PROTOUNIFY_LOG_LEVEL", ""); level != "" {
		cfg.Observability.LogLevel = level
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.CacheSize <= 0 {
		return fmt.Errorf("engine cache size must be positive, got %d", c.Engine.CacheSize)
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Observability.LogLevel)
	}

	for i, ex := range c.Merge.ExcludedFields {
		if ex.Message == "" || ex.Field == "" {
			return fmt.Errorf("excluded_fields[%d]: message and field are both required", i)
		}
	}

	seen := make(map[string]struct{}, len(c.Merge.Renames))
	for i, r := range c.Merge.Renames {
		if r.Message == "" || r.CanonicalName == "" {
			return fmt.Errorf("renames[%d]: message and canonical_name are both required", i)
		}
		if r.Number <= 0 {
			return fmt.Errorf("renames[%d]: field number must be positive, got %d", i, r.Number)
		}
		key := fmt.Sprintf("%s#%d", r.Message, r.Number)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("renames[%d]: duplicate rename for %s field %d", i, r.Message, r.Number)
		}
		seen[key] = struct{}{}
	}

	resolved := make(map[string]struct{}, len(c.Merge.Resolutions))
	for i, r := range c.Merge.Resolutions {
		if r.Message == "" || r.Field == "" || r.Conflict == "" {
			return fmt.Errorf("resolutions[%d]: message, field and conflict are all required", i)
		}
		key := r.Message + "." + r.Field
		if _, dup := resolved[key]; dup {
			return fmt.Errorf("resolutions[%d]: duplicate resolution for %s", i, key)
		}
		resolved[key] = struct{}{}
	}

	return nil
}

// MessageExcluded reports whether the merge policy skips the message.
func (c *MergeConfig) MessageExcluded(fullName string) bool {
	for _, m := range c.ExcludedMessages {
		if m == fullName {
			return true
		}
	}
	return false
}

// FieldExcluded reports whether the merge policy skips the field.
func (c *MergeConfig) FieldExcluded(message, field string) bool {
	for _, ex := range c.ExcludedFields {
		if ex.Message == message && ex.Field == field {
			return true
		}
	}
	return false
}

// ResolvedConflict returns the declared conflict type for a field, if any.
func (c *MergeConfig) ResolvedConflict(message, field string) (string, bool) {
	for _, r := range c.Resolutions {
		if r.Message == message && r.Field == field {
			return r.Conflict, true
		}
	}
	return "", false
}

// CanonicalName returns the pinned unified name for a field number, if any.
func (c *MergeConfig) CanonicalName(message string, number int32) (string, bool) {
	for _, r := range c.Renames {
		if r.Message == message && r.Number == number {
			return r.CanonicalName, true
		}
	}
	return "", false
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
