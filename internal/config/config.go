package config

// #region imports
import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/logging"
	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #endregion

// ErrInvalid marks configuration that failed validation.
var ErrInvalid = errors.New("invalid config")

// #region types

// Config holds all entry-scout configuration.
type Config struct {
	Language     string             `yaml:"language"`
	Log          logging.Config     `yaml:"log"`
	Search       SearchConfig       `yaml:"search"`
	Macro        MacroConfig        `yaml:"macro"`
	Collaborator CollaboratorConfig `yaml:"collaborator"`
	Fixture      FixtureConfig      `yaml:"fixture"`
	RunLog       RunLogConfig       `yaml:"runlog"`
	Rules        state.Rules        `yaml:"rules"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	Server       ServerConfig       `yaml:"server"`
	References   ReferencesConfig   `yaml:"references"`
	HTTPTimeout  string             `yaml:"http_timeout"`
}

// SearchConfig selects and configures the evidence collector.
type SearchConfig struct {
	Provider       string `yaml:"provider"` // tavily, duckduckgo, grpc, fixture, disabled
	TavilyAPIKey   string `yaml:"tavily_api_key"`
	TavilyEndpoint string `yaml:"tavily_endpoint"`
	DDGEndpoint    string `yaml:"ddg_endpoint"`
	Timeout        string `yaml:"timeout"`
}

// MacroConfig selects the macro-indicator source.
type MacroConfig struct {
	Provider string `yaml:"provider"` // worldbank, grpc, fixture, disabled
	Endpoint string `yaml:"endpoint"`
}

// CollaboratorConfig points at the remote gRPC collaborator.
type CollaboratorConfig struct {
	Addr      string `yaml:"addr"`
	Timeout   string `yaml:"timeout"`
	Summarize bool   `yaml:"summarize"`
}

// FixtureConfig names the offline fixture file.
type FixtureConfig struct {
	Path string `yaml:"path"`
}

// RunLogConfig configures the SQLite run log. An empty path disables it.
type RunLogConfig struct {
	Path string `yaml:"path"`
}

// ConcurrencyConfig bounds per-country fan-out inside a stage.
type ConcurrencyConfig struct {
	PerCountry int `yaml:"per_country"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ReferencesConfig points at the glossary directory.
type ReferencesConfig struct {
	Dir string `yaml:"dir"`
}

// #endregion types

// #region defaults

// Provider names accepted by the search and macro sections.
var (
	SearchProviders = []string{"tavily", "duckduckgo", "grpc", "fixture", "disabled"}
	MacroProviders  = []string{"worldbank", "grpc", "fixture", "disabled"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		Log: logging.Config{
			Level:    "info",
			Encoding: "json",
			Output:   "stderr",
		},
		Search: SearchConfig{
			Provider:       "duckduckgo",
			TavilyEndpoint: "https://api.tavily.com/search",
			DDGEndpoint:    "https://html.duckduckgo.com/html/",
			Timeout:        "15s",
		},
		Macro: MacroConfig{
			Provider: "worldbank",
			Endpoint: "https://api.worldbank.org/v2",
		},
		Collaborator: CollaboratorConfig{
			Timeout: "30s",
		},
		RunLog: RunLogConfig{
			Path: "data/entryscout.db",
		},
		Concurrency: ConcurrencyConfig{
			PerCountry: 4,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		References: ReferencesConfig{
			Dir: "references",
		},
		HTTPTimeout: "20s",
	}
}

// #endregion defaults

// #region load

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file yields the defaults. An empty path skips the
// file entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ENTRY_SCOUT_DB"); v != "" {
		c.RunLog.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Search.TavilyAPIKey = v
	}
	if v := os.Getenv("TAVILY_ENDPOINT"); v != "" {
		c.Search.TavilyEndpoint = v
	}
	if v := os.Getenv("WEB_SEARCH_PROVIDER"); v != "" {
		c.Search.Provider = v
	}
	if v := os.Getenv("WEB_SEARCH_TIMEOUT"); v != "" {
		// Accept bare seconds as well as Go durations.
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			v = (time.Duration(secs * float64(time.Second))).String()
		}
		c.Search.Timeout = v
	}
	if v := os.Getenv("WORLDBANK_ENDPOINT"); v != "" {
		c.Macro.Endpoint = v
	}
	if v := os.Getenv("COLLABORATOR_ADDR"); v != "" {
		c.Collaborator.Addr = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		c.HTTPTimeout = v
	}
	if v := os.Getenv("ENTRY_SCOUT_LANG"); v != "" {
		c.Language = v
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// #endregion load

// #region accessors

// SearchTimeout returns the search timeout, defaulting to 15s.
func (c *Config) SearchTimeout() time.Duration {
	return parseDuration(c.Search.Timeout, 15*time.Second)
}

// CollaboratorTimeout returns the per-call gRPC timeout, defaulting to 30s.
func (c *Config) CollaboratorTimeout() time.Duration {
	return parseDuration(c.Collaborator.Timeout, 30*time.Second)
}

// HTTPClientTimeout returns the timeout for plain HTTP fetches.
func (c *Config) HTTPClientTimeout() time.Duration {
	return parseDuration(c.HTTPTimeout, 20*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// #endregion accessors

// #region validate

// Validate checks provider names and the settings each one needs. Every
// failure wraps ErrInvalid.
func (c *Config) Validate() error {
	if !contains(SearchProviders, c.Search.Provider) {
		return fmt.Errorf("%w: search provider %q (valid: %v)", ErrInvalid, c.Search.Provider, SearchProviders)
	}
	if !contains(MacroProviders, c.Macro.Provider) {
		return fmt.Errorf("%w: macro provider %q (valid: %v)", ErrInvalid, c.Macro.Provider, MacroProviders)
	}
	if c.Search.Provider == "tavily" && c.Search.TavilyAPIKey == "" {
		return fmt.Errorf("%w: tavily provider needs TAVILY_API_KEY", ErrInvalid)
	}
	if (c.Search.Provider == "grpc" || c.Macro.Provider == "grpc" || c.Collaborator.Summarize) && c.Collaborator.Addr == "" {
		return fmt.Errorf("%w: grpc collaborator needs collaborator.addr", ErrInvalid)
	}
	if (c.Search.Provider == "fixture" || c.Macro.Provider == "fixture") && c.Fixture.Path == "" {
		return fmt.Errorf("%w: fixture provider needs fixture.path", ErrInvalid)
	}
	if c.Rules.MinEvidence < 0 {
		return fmt.Errorf("%w: rules.min_evidence must be >= 0", ErrInvalid)
	}
	if c.Concurrency.PerCountry < 1 {
		return fmt.Errorf("%w: concurrency.per_country must be >= 1", ErrInvalid)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// #endregion validate
