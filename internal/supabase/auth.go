package supabase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
	"github.com/supabase-community/gotrue-go/types"
	"golang.org/x/oauth2"
)

// gotrueAPI is the part of the gotrue client the auth service calls.
type gotrueAPI interface {
	Token(req types.TokenRequest) (*types.TokenResponse, error)
	GetUser() (*types.UserResponse, error)
	Logout() error
}

// AuthService authenticates users against Supabase auth.
type AuthService struct {
	projectURL string
	// authFor returns a gotrue client; accessToken is "" for anonymous calls
	authFor func(accessToken string) (gotrueAPI, error)
}

// NewAuthService creates an [AuthService] backed by f.
func NewAuthService(f *Factory) *AuthService {
	return &AuthService{
		projectURL: f.URL(),
		authFor: func(accessToken string) (gotrueAPI, error) {
			if accessToken == "" {
				c, err := f.Public()
				if err != nil {
					return nil, err
				}
				return c.Auth, nil
			}
			c, err := f.WithToken(accessToken)
			if err != nil {
				return nil, err
			}
			return c.Auth, nil
		},
	}
}

// SignIn authenticates with email and password.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*server.Session, error) {
	return s.token(ctx, types.TokenRequest{GrantType: "password", Email: shared.NormalizeEmail(email), Password: password})
}

// Exchange trades an OAuth authorization code and its PKCE verifier for a session.
func (s *AuthService) Exchange(ctx context.Context, code, verifier string) (*server.Session, error) {
	return s.token(ctx, types.TokenRequest{GrantType: "pkce", Code: code, CodeVerifier: verifier})
}

// Refresh obtains a new session from a refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*server.Session, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}
	session, err := s.token(ctx, types.TokenRequest{GrantType: "refresh_token", RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	return session, nil
}

// User returns the account that owns accessToken.
func (s *AuthService) User(ctx context.Context, accessToken string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	api, err := s.authFor(accessToken)
	if err != nil {
		return nil, err
	}

	resp, err := api.GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}

	user := toUser(resp.User)
	return &user, nil
}

// SignOut revokes the session that owns accessToken.
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	api, err := s.authFor(accessToken)
	if err != nil {
		return err
	}
	if err := api.Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// Resolve implements [server.SessionResolver]: expired tokens are refreshed, then the user is looked up.
func (s *AuthService) Resolve(ctx context.Context, token *oauth2.Token) (*server.Session, error) {
	if !token.Valid() {
		return s.Refresh(ctx, token.RefreshToken)
	}

	user, err := s.User(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	return &server.Session{Token: token, User: *user}, nil
}

// AuthorizeURL returns the Supabase URL that starts an OAuth login with provider using the PKCE flow.
func (s *AuthService) AuthorizeURL(provider, redirectTo, challenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "s256")
	return strings.TrimRight(s.projectURL, "/") + "/auth/v1/authorize?" + q.Encode()
}

func (s *AuthService) token(ctx context.Context, req types.TokenRequest) (*server.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	api, err := s.authFor("")
	if err != nil {
		return nil, err
	}

	resp, err := api.Token(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return toSession(resp.Session), nil
}

func toSession(s types.Session) *server.Session {
	token := &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
	}
	switch {
	case s.ExpiresAt > 0:
		token.Expiry = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		token.Expiry = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}

	return &server.Session{Token: token, User: toUser(s.User)}
}

func toUser(u types.User) models.User {
	user := models.User{ID: u.ID.String(), Email: u.Email}
	for _, key := range []string{"full_name", "name"} {
		if name, ok := u.UserMetadata[key].(string); ok && name != "" {
			user.DisplayName = name
			break
		}
	}
	return user
}
