package server

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/agentes/internal/shared"
	"golang.org/x/oauth2"
)

const (
	stateCookie    = "sb-oauth-state"
	verifierCookie = "sb-oauth-verifier"
)

// PKCEChallenge is the pair of values sent to the authorization endpoint.
type PKCEChallenge struct {
	State     string
	Challenge string
}

// PKCECookies keeps the OAuth state and PKCE verifier between the redirect to the provider and the callback.
type PKCECookies struct {
	Secure bool
	TTL    time.Duration
}

// NewPKCECookies creates a [PKCECookies] whose values expire after ten minutes.
func NewPKCECookies(secure bool) *PKCECookies {
	return &PKCECookies{Secure: secure, TTL: 10 * time.Minute}
}

// Begin generates a random state and a PKCE verifier, stores both in cookies and returns the state together
// with the S256 challenge derived from the verifier.
func (p *PKCECookies) Begin(w http.ResponseWriter) (*PKCEChallenge, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	verifier := oauth2.GenerateVerifier()
	p.set(w, stateCookie, state, int(p.TTL.Seconds()))
	p.set(w, verifierCookie, verifier, int(p.TTL.Seconds()))

	return &PKCEChallenge{State: state, Challenge: oauth2.S256ChallengeFromVerifier(verifier)}, nil
}

// Verify checks the callback's state parameter against the cookie and returns the stored verifier.
// The cookies are cleared whatever the outcome so a callback cannot be replayed.
func (p *PKCECookies) Verify(w http.ResponseWriter, r *http.Request) (string, error) {
	defer func() {
		p.set(w, stateCookie, "", -1)
		p.set(w, verifierCookie, "", -1)
	}()

	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" {
		return "", fmt.Errorf("%w: missing state cookie", shared.ErrInvalidState)
	}

	got := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(got), []byte(state.Value)) != 1 {
		return "", shared.ErrInvalidState
	}

	verifier, err := r.Cookie(verifierCookie)
	if err != nil || verifier.Value == "" {
		return "", fmt.Errorf("%w: missing verifier cookie", shared.ErrInvalidState)
	}

	return verifier.Value, nil
}

func (p *PKCECookies) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
