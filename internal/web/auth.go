package web

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/desertthunder/agentes/internal/shared"
)

const dashboardPath = "/dashboard"

type loginData struct {
	Email     string
	Next      string
	Error     string
	Providers []string
}

func (a *App) loginForm(w http.ResponseWriter, r *http.Request) {
	next := shared.SafeRedirect(r.URL.Query().Get("next"), dashboardPath)
	if a.cookies.HasSession(r) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	data := loginData{Next: next, Providers: a.config.Supabase.OAuthProviders}
	a.render(w, r, http.StatusOK, "login", view{Data: data})
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := shared.NormalizeEmail(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	data := loginData{
		Email:     email,
		Next:      shared.SafeRedirect(r.PostForm.Get("next"), dashboardPath),
		Providers: a.config.Supabase.OAuthProviders,
	}

	if email == "" || password == "" {
		data.Error = "Informe e-mail e senha."
		a.render(w, r, http.StatusUnprocessableEntity, "login", view{Data: data})
		return
	}

	session, err := a.auth.SignIn(r.Context(), email, password)
	switch {
	case isUnavailable(err):
		a.reporter.LogError(r.Context(), err, "path", r.URL.Path)
		data.Error = "Login indisponível no momento."
		a.render(w, r, http.StatusServiceUnavailable, "login", view{Data: data})
		return
	case err != nil:
		a.logger.Warn("sign-in rejected", "email", email, "error", err)
		data.Error = "E-mail ou senha inválidos."
		a.render(w, r, http.StatusUnauthorized, "login", view{Data: data})
		return
	}

	a.cookies.Write(w, session.Token)
	a.reporter.Track(r.Context(), "login", map[string]any{"method": "password", "user_id": session.User.ID})
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

// oauthStart redirects to Supabase's authorize endpoint for provider. The state travels inside
// redirect_to so it comes back on the callback next to the authorization code.
func (a *App) oauthStart(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if !slices.Contains(a.config.Supabase.OAuthProviders, provider) {
		a.notFound(w, r)
		return
	}

	challenge, err := a.pkce.Begin(w)
	if err != nil {
		a.serverError(w, r, err)
		return
	}

	redirectTo := strings.TrimRight(a.config.Server.BaseURL, "/") + "/auth/callback?state=" + url.QueryEscape(challenge.State)
	target := a.auth.AuthorizeURL(provider, redirectTo, challenge.Challenge)
	if target == "" {
		a.loginError(w, r, "Login indisponível no momento.")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (a *App) oauthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if msg := q.Get("error_description"); msg != "" || q.Get("error") != "" {
		if msg == "" {
			msg = q.Get("error")
		}
		a.logger.Warn("oauth provider returned an error", "error", msg)
		a.loginError(w, r, "Não foi possível entrar: "+msg)
		return
	}

	verifier, err := a.pkce.Verify(w, r)
	if err != nil {
		a.logger.Warn("oauth callback rejected", "error", err)
		a.render(w, r, http.StatusBadRequest, "error", view{Data: "Sessão de login inválida ou expirada. Tente novamente."})
		return
	}

	code := q.Get("code")
	if code == "" {
		a.render(w, r, http.StatusBadRequest, "error", view{Data: "Código de autorização ausente."})
		return
	}

	session, err := a.auth.Exchange(r.Context(), code, verifier)
	if err != nil {
		if isUnavailable(err) || !errors.Is(err, shared.ErrAuthFailed) {
			a.reporter.LogError(r.Context(), err, "path", r.URL.Path)
		}
		a.loginError(w, r, "Não foi possível concluir o login.")
		return
	}

	a.cookies.Write(w, session.Token)
	a.reporter.Track(r.Context(), "login", map[string]any{"method": "oauth", "user_id": session.User.ID})
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

// logout revokes the session upstream when possible; the cookies are cleared either way.
func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	if token, err := a.cookies.Read(r); err == nil {
		if err := a.auth.SignOut(r.Context(), token.AccessToken); err != nil {
			a.reporter.LogError(r.Context(), err, "path", r.URL.Path)
		}
	}

	a.cookies.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) loginError(w http.ResponseWriter, r *http.Request, msg string) {
	a.render(w, r, http.StatusUnauthorized, "login", view{Data: loginData{
		Next:      dashboardPath,
		Error:     msg,
		Providers: a.config.Supabase.OAuthProviders,
	}})
}
