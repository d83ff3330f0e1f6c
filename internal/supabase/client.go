package supabase

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
	"github.com/supabase-community/supabase-go"
)

// Factory builds SDK clients from the project configuration.
type Factory struct {
	cfg     shared.SupabaseConfig
	cookies *server.CookieStore
}

// NewFactory creates a [Factory]. cookies may be nil when [Factory.ForRequest] is not used.
func NewFactory(cfg shared.SupabaseConfig, cookies *server.CookieStore) *Factory {
	if cookies == nil {
		cookies = server.NewCookieStore(false)
	}
	return &Factory{cfg: cfg, cookies: cookies}
}

// Configured reports whether the public URL and anon key are both present.
func (f *Factory) Configured() bool {
	return f.cfg.URL != "" && f.cfg.AnonKey != ""
}

// URL returns the project URL.
func (f *Factory) URL() string {
	return f.cfg.URL
}

// Public returns a client authenticated with the anon key only.
func (f *Factory) Public() (*supabase.Client, error) {
	return f.build(f.cfg.AnonKey, "", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
}

// ForRequest returns an anon-key client acting as the user behind r.
//
// The session resolved by [server.RequireSession] wins over the cookies, since its token may have just been
// refreshed. Without either it is equivalent to [Factory.Public].
func (f *Factory) ForRequest(r *http.Request) (*supabase.Client, error) {
	if s := server.SessionFrom(r.Context()); s != nil && s.Token != nil && s.Token.AccessToken != "" {
		return f.WithToken(s.Token.AccessToken)
	}

	token, err := f.cookies.Read(r)
	if err != nil {
		return f.Public()
	}
	return f.WithToken(token.AccessToken)
}

// WithToken returns an anon-key client acting as the holder of accessToken.
func (f *Factory) WithToken(accessToken string) (*supabase.Client, error) {
	return f.build(f.cfg.AnonKey, accessToken, "NEXT_PUBLIC_SUPABASE_ANON_KEY")
}

// Admin returns a client using the service-role key, which bypasses row-level security.
func (f *Factory) Admin() (*supabase.Client, error) {
	return f.build(f.cfg.ServiceRoleKey, "", "SUPABASE_SERVICE_ROLE_KEY")
}

// SafeAdmin is [Factory.Admin] returning a message instead of an error. The message is empty on success.
func (f *Factory) SafeAdmin() (client *supabase.Client, message string) {
	defer func() {
		if v := recover(); v != nil {
			client, message = nil, fmt.Sprint(v)
		}
	}()

	c, err := f.Admin()
	if err != nil {
		return nil, err.Error()
	}
	return c, ""
}

func (f *Factory) build(key, accessToken, keyName string) (*supabase.Client, error) {
	if f.cfg.URL == "" {
		return nil, fmt.Errorf("%w: NEXT_PUBLIC_SUPABASE_URL is not set", shared.ErrMissingCredentials)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: %s is not set", shared.ErrMissingCredentials, keyName)
	}

	var opts *supabase.ClientOptions
	if accessToken != "" {
		opts = &supabase.ClientOptions{Headers: map[string]string{"Authorization": "Bearer " + accessToken}}
	}

	client, err := supabase.NewClient(f.cfg.URL, key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	if accessToken != "" {
		client.Auth = client.Auth.WithToken(accessToken)
	}
	return client, nil
}
