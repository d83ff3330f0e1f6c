package web

import (
	"net/http"
)

const (
	defaultSignupURL   = "https://app.agentesdeconversao.com.br/signup"
	defaultSignupDelay = 3000
)

// signup shows a short notice, then sends the browser to the external signup page.
// The redirect happens client-side after a fixed delay; there is no retry or error handling.
func (a *App) signup(w http.ResponseWriter, r *http.Request) {
	target := a.config.Signup.URL
	if target == "" {
		target = defaultSignupURL
	}
	delay := a.config.Signup.DelayMS
	if delay <= 0 {
		delay = defaultSignupDelay
	}

	a.reporter.Track(r.Context(), "signup_redirect", map[string]any{"referer": r.Referer()})
	a.render(w, r, http.StatusOK, "signup", view{Data: map[string]any{
		"URL":          target,
		"DelayMS":      delay,
		"DelaySeconds": (delay + 999) / 1000,
	}})
}
