package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Supabase  SupabaseConfig  `toml:"supabase"`
	Database  DatabaseConfig  `toml:"database"`
	Signup    SignupConfig    `toml:"signup"`
	Analytics AnalyticsConfig `toml:"analytics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	BaseURL       string `toml:"base_url"`
	SecureCookies bool   `toml:"secure_cookies"`
}

// SupabaseConfig contains the project URL and keys.
//
// URL and AnonKey are public (they are embedded in pages); ServiceRoleKey and DBURL never leave the server.
type SupabaseConfig struct {
	URL            string   `toml:"url"`
	AnonKey        string   `toml:"anon_key"`
	ServiceRoleKey string   `toml:"service_role_key"`
	DBURL          string   `toml:"db_url"`
	OAuthProviders []string `toml:"oauth_providers"`
}

// DatabaseConfig contains agent store settings.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SignupConfig contains the external signup target.
type SignupConfig struct {
	URL     string `toml:"url"`
	DelayMS int    `toml:"delay_ms"`
}

// AnalyticsConfig contains the error/event forwarding endpoint.
type AnalyticsConfig struct {
	Endpoint string  `toml:"endpoint"`
	Rate     float64 `toml:"rate"`
	Burst    int     `toml:"burst"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// envOverrides maps environment variables to config fields, first match wins.
var envOverrides = []struct {
	keys []string
	set  func(c *Config, v string)
}{
	{[]string{"NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_URL"}, func(c *Config, v string) { c.Supabase.URL = v }},
	{[]string{"NEXT_PUBLIC_SUPABASE_ANON_KEY", "SUPABASE_ANON_KEY"}, func(c *Config, v string) { c.Supabase.AnonKey = v }},
	{[]string{"SUPABASE_SERVICE_ROLE_KEY"}, func(c *Config, v string) { c.Supabase.ServiceRoleKey = v }},
	{[]string{"SUPABASE_DB_URL"}, func(c *Config, v string) { c.Supabase.DBURL = v }},
	{[]string{"AGENTES_SIGNUP_URL"}, func(c *Config, v string) { c.Signup.URL = v }},
	{[]string{"AGENTES_ANALYTICS_URL"}, func(c *Config, v string) { c.Analytics.Endpoint = v }},
	{[]string{"AGENTES_BASE_URL"}, func(c *Config, v string) { c.Server.BaseURL = v }},
	{[]string{"AGENTES_DATABASE_DRIVER"}, func(c *Config, v string) { c.Database.Driver = v }},
}

// ApplyEnv overrides config values with non-empty environment variables resolved through lookup.
//
// Pass [os.LookupEnv] in production. AGENTES_PORT is parsed as an integer and rejected if malformed.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for _, o := range envOverrides {
		for _, key := range o.keys {
			if v, ok := lookup(key); ok && v != "" {
				o.set(c, v)
				break
			}
		}
	}

	if v, ok := lookup("AGENTES_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: AGENTES_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}

	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads path when it exists, falls back to defaults otherwise, then applies environment overrides.
func ResolveConfig(path string, lookup func(string) (string, bool)) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := config.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return config, nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
