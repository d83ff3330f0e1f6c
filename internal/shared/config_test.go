package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./agentes.db" {
			t.Errorf("expected database path ./agentes.db, got %s", config.Database.Path)
		}

		if config.Database.Driver != "sqlite" {
			t.Errorf("expected sqlite driver, got %s", config.Database.Driver)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Signup.DelayMS != 3000 {
			t.Errorf("expected signup delay 3000, got %d", config.Signup.DelayMS)
		}

		if config.Signup.URL != "https://app.agentesdeconversao.com.br/signup" {
			t.Errorf("unexpected signup url %s", config.Signup.URL)
		}

		if config.Supabase.URL != "" || config.Supabase.ServiceRoleKey != "" {
			t.Error("expected supabase credentials to be empty by default")
		}
	})

	t.Run("Addr", func(t *testing.T) {
		s := ServerConfig{Host: "0.0.0.0", Port: 8080}
		if s.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected 0.0.0.0:8080, got %s", s.Addr())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
driver = "supabase"

[server]
host = "0.0.0.0"
port = 8080

[supabase]
url = "https://abc.supabase.co"
anon_key = "anon"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Driver != "supabase" {
			t.Errorf("expected supabase driver, got %s", config.Database.Driver)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Supabase.URL != "https://abc.supabase.co" {
			t.Errorf("unexpected supabase url %s", config.Supabase.URL)
		}

		if config.Signup.DelayMS != 3000 {
			t.Errorf("expected missing sections to keep defaults, got delay %d", config.Signup.DelayMS)
		}
	})

	t.Run("LoadConfig invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("LoadConfig missing", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("public names win over fallbacks", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(envMap(map[string]string{
			"NEXT_PUBLIC_SUPABASE_URL":      "https://public.supabase.co",
			"SUPABASE_URL":                  "https://fallback.supabase.co",
			"NEXT_PUBLIC_SUPABASE_ANON_KEY": "anon",
			"SUPABASE_SERVICE_ROLE_KEY":     "service",
		}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Supabase.URL != "https://public.supabase.co" {
			t.Errorf("unexpected url %s", config.Supabase.URL)
		}
		if config.Supabase.AnonKey != "anon" {
			t.Errorf("unexpected anon key %s", config.Supabase.AnonKey)
		}
		if config.Supabase.ServiceRoleKey != "service" {
			t.Errorf("unexpected service key %s", config.Supabase.ServiceRoleKey)
		}
	})

	t.Run("fallback names", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.ApplyEnv(envMap(map[string]string{"SUPABASE_URL": "https://fallback.supabase.co"})); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Supabase.URL != "https://fallback.supabase.co" {
			t.Errorf("unexpected url %s", config.Supabase.URL)
		}
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.ApplyEnv(envMap(map[string]string{"AGENTES_SIGNUP_URL": ""})); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Signup.URL != DefaultConfig().Signup.URL {
			t.Errorf("expected default signup url, got %s", config.Signup.URL)
		}
	})

	t.Run("port", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.ApplyEnv(envMap(map[string]string{"AGENTES_PORT": "9090"})); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != 9090 {
			t.Errorf("expected port 9090, got %d", config.Server.Port)
		}
	})

	t.Run("malformed port", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(envMap(map[string]string{"AGENTES_PORT": "http"}))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestResolveConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		config, err := ResolveConfig(filepath.Join(t.TempDir(), "config.toml"), envMap(nil))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})

	t.Run("env applied after file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[supabase]\nurl = \"https://file.supabase.co\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := ResolveConfig(configPath, envMap(map[string]string{"SUPABASE_URL": "https://env.supabase.co"}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Supabase.URL != "https://env.supabase.co" {
			t.Errorf("expected env to win, got %s", config.Supabase.URL)
		}
	})
}
