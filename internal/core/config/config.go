// Package config loads and saves ~/.claude-patterns/config.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/neilberkman/cpl/internal/core/llm"
)

const (
	// FileName is the config file inside the data directory
	FileName = "config.toml"

	// CurrentVersion is written by init
	CurrentVersion = 1
)

type Config struct {
	Version  int            `toml:"version"`
	LLM      LLMConfig      `toml:"llm"`
	Analysis AnalysisConfig `toml:"analysis"`
	Sync     SyncConfig     `toml:"sync"`
	Daemon   DaemonConfig   `toml:"daemon"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKeyEnv      string `toml:"api_key_env"`
	BaseURL        string `toml:"base_url"`
	Region         string `toml:"region"`
	Profile        string `toml:"profile"`
	MaxTokens      int    `toml:"max_tokens"`
	PromptTemplate string `toml:"prompt_template"` // optional mustache file
}

type AnalysisConfig struct {
	AutoAnalyze      bool     `toml:"auto_analyze"`
	MinSessionLength int      `toml:"min_session_length"`
	ExcludePatterns  []string `toml:"exclude_patterns"`
	DeepScan         bool     `toml:"deep_scan"`
}

type SyncConfig struct {
	AutoSync       bool     `toml:"auto_sync"`
	TargetProjects []string `toml:"target_projects"`
}

type DaemonConfig struct {
	QuietPeriod  Duration `toml:"quiet_period"`
	PollInterval Duration `toml:"poll_interval"`
	MaxAttempts  int      `toml:"max_attempts"`
}

// ProviderConfig converts the [llm] table for llm.NewProvider
func (l LLMConfig) ProviderConfig() llm.Config {
	return llm.Config{
		Provider:  l.Provider,
		Model:     l.Model,
		APIKeyEnv: l.APIKeyEnv,
		BaseURL:   l.BaseURL,
		Region:    l.Region,
		Profile:   l.Profile,
		MaxTokens: l.MaxTokens,
	}
}

// Duration is a time.Duration stored as a string such as "2m"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		LLM: LLMConfig{
			Provider: "claude-code",
			Model:    "claude-opus-4-20250514",
		},
		Analysis: AnalysisConfig{
			MinSessionLength: 5,
			ExcludePatterns:  []string{},
		},
		Sync: SyncConfig{
			TargetProjects: []string{},
		},
		Daemon: DaemonConfig{
			QuietPeriod:  Duration{2 * time.Minute},
			PollInterval: Duration{30 * time.Second},
			MaxAttempts:  3,
		},
	}
}

// DefaultDataDir returns ~/.claude-patterns
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude-patterns"
	}
	return filepath.Join(home, ".claude-patterns")
}

// PathIn returns the config path inside dataDir
func PathIn(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads the config at path. A missing file yields defaults; a file
// that does not decode is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Set assigns a scalar or list field by its dotted TOML key, e.g.
// "llm.provider" or "analysis.deep_scan". Lists take comma-separated values.
func (c *Config) Set(key, value string) error {
	field, err := lookup(reflect.ValueOf(c).Elem(), strings.Split(key, "."))
	if err != nil {
		return fmt.Errorf("unknown config key %q", key)
	}

	if field.Type() == reflect.TypeOf(Duration{}) {
		var d Duration
		if err := d.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Slice:
		items := []string{}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("config key %q is not settable", key)
	}
	return nil
}

func lookup(v reflect.Value, path []string) (reflect.Value, error) {
	if len(path) == 0 || v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("not found")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") != path[0] {
			continue
		}
		field := v.Field(i)
		if len(path) == 1 {
			if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(Duration{}) {
				return reflect.Value{}, fmt.Errorf("not a scalar")
			}
			return field, nil
		}
		return lookup(field, path[1:])
	}
	return reflect.Value{}, fmt.Errorf("not found")
}
