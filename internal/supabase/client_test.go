package supabase

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
)

func TestFactory(t *testing.T) {
	full := shared.SupabaseConfig{URL: "https://abc.supabase.co", AnonKey: "anon", ServiceRoleKey: "service"}

	t.Run("Configured", func(t *testing.T) {
		if !NewFactory(full, nil).Configured() {
			t.Error("expected configured factory")
		}
		if NewFactory(shared.SupabaseConfig{URL: full.URL}, nil).Configured() {
			t.Error("expected unconfigured factory without anon key")
		}
	})

	t.Run("Public", func(t *testing.T) {
		client, err := NewFactory(full, nil).Public()
		if err != nil || client == nil {
			t.Fatalf("expected client, got %v", err)
		}
	})

	t.Run("Public without URL", func(t *testing.T) {
		_, err := NewFactory(shared.SupabaseConfig{AnonKey: "anon"}, nil).Public()
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if !strings.Contains(err.Error(), "NEXT_PUBLIC_SUPABASE_URL") {
			t.Errorf("expected variable name in error, got %v", err)
		}
	})

	t.Run("Admin without service key", func(t *testing.T) {
		cfg := full
		cfg.ServiceRoleKey = ""
		_, err := NewFactory(cfg, nil).Admin()
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("SafeAdmin", func(t *testing.T) {
		client, msg := NewFactory(full, nil).SafeAdmin()
		if client == nil || msg != "" {
			t.Errorf("expected client and empty message, got %v %q", client, msg)
		}

		cfg := full
		cfg.ServiceRoleKey = ""
		client, msg = NewFactory(cfg, nil).SafeAdmin()
		if client != nil {
			t.Error("expected nil client")
		}
		if !strings.Contains(msg, "SUPABASE_SERVICE_ROLE_KEY") {
			t.Errorf("expected message naming the missing variable, got %q", msg)
		}
	})

	t.Run("ForRequest", func(t *testing.T) {
		f := NewFactory(full, server.NewCookieStore(false))

		anon := httptest.NewRequest(http.MethodGet, "/", nil)
		if client, err := f.ForRequest(anon); err != nil || client == nil {
			t.Errorf("expected anon client, got %v", err)
		}

		authed := httptest.NewRequest(http.MethodGet, "/", nil)
		authed.AddCookie(&http.Cookie{Name: server.AccessTokenCookie, Value: "user-token"})
		if client, err := f.ForRequest(authed); err != nil || client == nil {
			t.Errorf("expected user client, got %v", err)
		}
	})
}
