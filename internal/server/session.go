package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/shared"
	"golang.org/x/oauth2"
)

// Session cookie names, matching the ones Supabase's SSR helpers use.
const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
	ExpiresAtCookie    = "sb-expires-at"
)

// Session is an authenticated user together with the token that proves it.
type Session struct {
	Token *oauth2.Token
	User  models.User
}

// SessionResolver turns a cookie token into a [Session], refreshing it when expired.
type SessionResolver interface {
	Resolve(ctx context.Context, token *oauth2.Token) (*Session, error)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by [RequireSession], or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// CookieStore reads and writes the session token cookies.
type CookieStore struct {
	Secure bool
	MaxAge time.Duration
	now    func() time.Time
}

// NewCookieStore creates a [CookieStore]. Cookies live for 30 days; the access token inside expires sooner
// and is refreshed with the refresh token.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure, MaxAge: 30 * 24 * time.Hour, now: time.Now}
}

// Read returns the token stored in r's cookies, or [shared.ErrNotAuthenticated] when there is none.
//
// The expiry is zero (never expires) when the expiry cookie is missing or malformed.
func (c *CookieStore) Read(r *http.Request) (*oauth2.Token, error) {
	access, err := r.Cookie(AccessTokenCookie)
	if err != nil || access.Value == "" {
		return nil, shared.ErrNotAuthenticated
	}

	token := &oauth2.Token{AccessToken: access.Value, TokenType: "bearer"}
	if refresh, err := r.Cookie(RefreshTokenCookie); err == nil {
		token.RefreshToken = refresh.Value
	}
	if exp, err := r.Cookie(ExpiresAtCookie); err == nil {
		if secs, err := strconv.ParseInt(exp.Value, 10, 64); err == nil {
			token.Expiry = time.Unix(secs, 0)
		}
	}

	return token, nil
}

// HasSession reports whether r carries an access token cookie, without validating it.
func (c *CookieStore) HasSession(r *http.Request) bool {
	_, err := c.Read(r)
	return err == nil
}

// Write stores token in the response cookies.
func (c *CookieStore) Write(w http.ResponseWriter, token *oauth2.Token) {
	expires := c.now().Add(c.MaxAge)
	http.SetCookie(w, c.cookie(AccessTokenCookie, token.AccessToken, expires))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, token.RefreshToken, expires))

	var exp string
	if !token.Expiry.IsZero() {
		exp = strconv.FormatInt(token.Expiry.Unix(), 10)
	}
	http.SetCookie(w, c.cookie(ExpiresAtCookie, exp, expires))
}

// Clear expires every session cookie.
func (c *CookieStore) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, ExpiresAtCookie} {
		cookie := c.cookie(name, "", time.Unix(0, 0))
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func (c *CookieStore) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
