// Package web serves the marketing site and the agent dashboard.
//
// # Routes
//
//	GET  /                              → landing page
//	GET  /blog, /contato, /casos-de-uso → "Página em construção" placeholders
//	GET  /onboarding                    → placeholder
//	GET  /precos                        → pricing table
//	GET  /cadastro                      → timed redirect to the external signup
//	GET  /api/health                    → JSON liveness probe
//	GET  /login, POST /login            → email and password sign-in
//	GET  /auth/{provider}               → OAuth start (PKCE)
//	GET  /auth/callback                 → OAuth completion
//	POST /logout                        → sign-out
//	GET  /dashboard                     → agent list (requires session)
//	GET  /dashboard/agents/new          → agent form
//	POST /dashboard/agents              → create agent
//	GET  /dashboard/agents/{id}         → edit form
//	POST /dashboard/agents/{id}         → update agent
//	POST /dashboard/agents/{id}/delete  → soft delete
//	POST /dashboard/agents/{id}/toggle  → flip active
//
// Pages are rendered server-side with html/template; every other path gets the not-found page.
//
// # Sessions
//
// The Supabase access and refresh tokens live in HttpOnly cookies (see [server.CookieStore]).
// Dashboard routes sit behind [server.RequireSession], which refreshes expired tokens through the
// [Authenticator] and stores the resolved [server.Session] in the request context.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
	"golang.org/x/oauth2"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Authenticator signs users in and out and resolves session cookies.
type Authenticator interface {
	server.SessionResolver
	SignIn(ctx context.Context, email, password string) (*server.Session, error)
	Exchange(ctx context.Context, code, verifier string) (*server.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo, challenge string) string
}

// Reporter receives handler errors and product events.
type Reporter interface {
	server.ErrorReporter
	Track(ctx context.Context, name string, props map[string]any)
}

// AgentStore returns the agent repository serving a request that already passed [server.RequireSession].
type AgentStore func(r *http.Request) (models.Repository[*models.Agent], error)

// Options configures [New].
type Options struct {
	Config   *shared.Config
	Auth     Authenticator // nil disables sign-in
	Agents   AgentStore
	Reporter Reporter
	Logger   *log.Logger
	Now      func() time.Time
}

// App holds the dependencies of every handler.
type App struct {
	config    *shared.Config
	auth      Authenticator
	agents    AgentStore
	reporter  Reporter
	logger    *log.Logger
	now       func() time.Time
	cookies   *server.CookieStore
	pkce      *server.PKCECookies
	templates map[string]*template.Template
}

// New creates an [App] and parses its templates.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Auth == nil {
		opts.Auth = unavailableAuth{}
	}
	if opts.Agents == nil {
		return nil, fmt.Errorf("%w: agent store", shared.ErrMissingArgument)
	}
	if opts.Reporter == nil {
		return nil, fmt.Errorf("%w: reporter", shared.ErrMissingArgument)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	secure := opts.Config.Server.SecureCookies
	return &App{
		config:    opts.Config,
		auth:      opts.Auth,
		agents:    opts.Agents,
		reporter:  opts.Reporter,
		logger:    shared.WithLogger(opts.Logger, "component", "web"),
		now:       opts.Now,
		cookies:   server.NewCookieStore(secure),
		pkce:      server.NewPKCECookies(secure),
		templates: templates,
	}, nil
}

// Cookies returns the session cookie store shared by the handlers.
func (a *App) Cookies() *server.CookieStore {
	return a.cookies
}

// Routes builds the router serving the whole site.
func (a *App) Routes() http.Handler {
	r := server.NewBasicRouter()
	r.Use(server.Logging(a.logger), server.Recover(a.reporter, http.HandlerFunc(a.internalError)))

	static, _ := fs.Sub(staticFS, "static")
	r.Handle(http.MethodGet, "/static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	r.Handler(NewHealthHandler(a.now))

	a.registerPages(r)
	r.HandleFunc(http.MethodGet, "/cadastro", a.signup)

	r.HandleFunc(http.MethodGet, "/login", a.loginForm)
	r.HandleFunc(http.MethodPost, "/login", a.login)
	r.HandleFunc(http.MethodGet, "/auth/callback", a.oauthCallback)
	r.HandleFunc(http.MethodGet, "/auth/{provider}", a.oauthStart)
	r.HandleFunc(http.MethodPost, "/logout", a.logout)

	r.NotFound(http.HandlerFunc(a.notFound))

	r.Use(server.RequireSession(a.cookies, a.auth, "/login"))
	r.HandleFunc(http.MethodGet, "/dashboard", a.dashboard)
	r.HandleFunc(http.MethodGet, "/dashboard/agents/new", a.newAgent)
	r.HandleFunc(http.MethodPost, "/dashboard/agents", a.createAgent)
	r.HandleFunc(http.MethodGet, "/dashboard/agents/{id}", a.editAgent)
	r.HandleFunc(http.MethodPost, "/dashboard/agents/{id}", a.updateAgent)
	r.HandleFunc(http.MethodPost, "/dashboard/agents/{id}/delete", a.deleteAgent)
	r.HandleFunc(http.MethodPost, "/dashboard/agents/{id}/toggle", a.toggleAgent)

	return r
}

// unavailableAuth stands in when Supabase is not configured.
type unavailableAuth struct{}

var errAuthUnavailable = fmt.Errorf("%w: supabase auth is not configured", shared.ErrServiceUnavailable)

func (unavailableAuth) Resolve(context.Context, *oauth2.Token) (*server.Session, error) {
	return nil, errAuthUnavailable
}

func (unavailableAuth) SignIn(context.Context, string, string) (*server.Session, error) {
	return nil, errAuthUnavailable
}

func (unavailableAuth) Exchange(context.Context, string, string) (*server.Session, error) {
	return nil, errAuthUnavailable
}

func (unavailableAuth) SignOut(context.Context, string) error { return nil }

func (unavailableAuth) AuthorizeURL(string, string, string) string { return "" }

func isUnavailable(err error) bool {
	return errors.Is(err, shared.ErrServiceUnavailable)
}
