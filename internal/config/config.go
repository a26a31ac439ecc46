// Package config loads Arbor settings from defaults, a YAML file, a .env file and
// ARBOR_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. ARBOR_HTTP_PORT.
const EnvPrefix = "ARBOR_"

// DefaultEnvFile is read when present.
const DefaultEnvFile = ".env"

// ErrInvalidConfig is returned for unreadable, unknown or out-of-range settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Config is the full set of runtime settings.
type Config struct {
	LogLevel string        `mapstructure:"log_level" yaml:"log_level"`
	HTTP     HTTPConfig    `mapstructure:"http" yaml:"http"`
	MCP      MCPConfig     `mapstructure:"mcp" yaml:"mcp"`
	Session  SessionConfig `mapstructure:"session" yaml:"session"`
}

type HTTPConfig struct {
	Port    int  `mapstructure:"port" yaml:"port"`
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Port      int    `mapstructure:"port" yaml:"port"`
}

type SessionConfig struct {
	MaxDepth        int  `mapstructure:"max_depth" yaml:"max_depth"`
	HistoryCapacity int  `mapstructure:"history_capacity" yaml:"history_capacity"`
	Strict          bool `mapstructure:"strict" yaml:"strict"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level": "info",
		"http": map[string]any{
			"port":    8080,
			"metrics": true,
		},
		"mcp": map[string]any{
			"transport": TransportStdio,
			"port":      8081,
		},
		"session": map[string]any{
			"max_depth":        domain.MaxDepth,
			"history_capacity": domain.HistoryCapacity,
			"strict":           false,
		},
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	cfg, err := decode(defaults())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load resolves the configuration. path may be empty; envFile may be empty to skip
// .env loading, and a missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	raw := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		merge(raw, file)
	}

	env, err := environment(envFile)
	if err != nil {
		return nil, err
	}
	applyEnv(raw, env)

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("http.port out of range: %d", c.HTTP.Port))
	}
	if c.MCP.Port < 0 || c.MCP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("mcp.port out of range: %d", c.MCP.Port))
	}
	if c.MCP.Transport != TransportStdio && c.MCP.Transport != TransportSSE {
		problems = append(problems, fmt.Sprintf("mcp.transport must be %q or %q, got %q", TransportStdio, TransportSSE, c.MCP.Transport))
	}
	if c.Session.MaxDepth < 0 {
		problems = append(problems, fmt.Sprintf("session.max_depth must not be negative: %d", c.Session.MaxDepth))
	}
	if c.Session.HistoryCapacity < 1 {
		problems = append(problems, fmt.Sprintf("session.history_capacity must be at least 1: %d", c.Session.HistoryCapacity))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// environment returns ARBOR_* variables. The process environment wins over envFile.
func environment(envFile string) (map[string]string, error) {
	env := make(map[string]string)
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envFile, err)
		}
		for k, v := range fileEnv {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// applyEnv sets known keys from variables such as ARBOR_SESSION_MAX_DEPTH.
// Variables that name no setting are ignored.
func applyEnv(raw map[string]any, env map[string]string) {
	keys := make(map[string][]string)
	flatten(defaults(), nil, keys)

	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		path, ok := keys[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))]
		if !ok {
			continue
		}
		set(raw, path, env[name])
	}
}

func flatten(m map[string]any, prefix []string, out map[string][]string) {
	for k, v := range m {
		path := append(append([]string(nil), prefix...), k)
		if sub, ok := v.(map[string]any); ok {
			flatten(sub, path, out)
			continue
		}
		out[strings.Join(path, "_")] = path
	}
}

func set(m map[string]any, path []string, value any) {
	for _, k := range path[:len(path)-1] {
		sub, ok := m[k].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			m[k] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = value
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				merge(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}
