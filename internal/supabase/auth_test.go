package supabase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/agentes/internal/shared"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"golang.org/x/oauth2"
)

type fakeGotrue struct {
	token     string
	requests  []types.TokenRequest
	tokenErr  error
	userErr   error
	logoutErr error
	user      types.User
	loggedOut bool
}

func (f *fakeGotrue) Token(req types.TokenRequest) (*types.TokenResponse, error) {
	f.requests = append(f.requests, req)
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	resp := &types.TokenResponse{}
	resp.AccessToken = "access-" + req.GrantType
	resp.RefreshToken = "refresh"
	resp.TokenType = "bearer"
	resp.ExpiresAt = time.Now().Add(time.Hour).Unix()
	resp.Session.User = f.user
	return resp, nil
}

func (f *fakeGotrue) GetUser() (*types.UserResponse, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &types.UserResponse{User: f.user}, nil
}

func (f *fakeGotrue) Logout() error {
	f.loggedOut = true
	return f.logoutErr
}

func newTestAuth(fake *fakeGotrue) *AuthService {
	return &AuthService{
		projectURL: "https://abc.supabase.co/",
		authFor: func(accessToken string) (gotrueAPI, error) {
			fake.token = accessToken
			return fake, nil
		},
	}
}

func testUser() types.User {
	u := types.User{Email: "ana@example.com", UserMetadata: map[string]interface{}{"full_name": "Ana Souza"}}
	u.ID = uuid.MustParse("6f1c2b9e-0d7a-4c55-9d0e-3b4a5c6d7e8f")
	return u
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("SignIn", func(t *testing.T) {
		fake := &fakeGotrue{user: testUser()}
		session, err := newTestAuth(fake).SignIn(ctx, "  Ana@Example.com ", "secret")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		req := fake.requests[0]
		if req.GrantType != "password" || req.Email != "ana@example.com" || req.Password != "secret" {
			t.Errorf("unexpected token request %+v", req)
		}
		if session.Token.AccessToken != "access-password" || session.Token.Expiry.IsZero() {
			t.Errorf("unexpected token %+v", session.Token)
		}
		if session.User.ID != "6f1c2b9e-0d7a-4c55-9d0e-3b4a5c6d7e8f" || session.User.DisplayName != "Ana Souza" {
			t.Errorf("unexpected user %+v", session.User)
		}
	})

	t.Run("SignIn failure", func(t *testing.T) {
		fake := &fakeGotrue{tokenErr: errors.New("invalid login credentials")}
		_, err := newTestAuth(fake).SignIn(ctx, "ana@example.com", "wrong")
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("SignIn canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		fake := &fakeGotrue{}
		if _, err := newTestAuth(fake).SignIn(canceled, "a@b.c", "x"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(fake.requests) != 0 {
			t.Error("expected no request on canceled context")
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		fake := &fakeGotrue{user: testUser()}
		if _, err := newTestAuth(fake).Exchange(ctx, "code-1", "verifier-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		req := fake.requests[0]
		if req.GrantType != "pkce" || req.Code != "code-1" || req.CodeVerifier != "verifier-1" {
			t.Errorf("unexpected token request %+v", req)
		}
	})

	t.Run("Refresh without token", func(t *testing.T) {
		_, err := newTestAuth(&fakeGotrue{}).Refresh(ctx, "")
		if !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})

	t.Run("Refresh failure", func(t *testing.T) {
		_, err := newTestAuth(&fakeGotrue{tokenErr: errors.New("revoked")}).Refresh(ctx, "r")
		if !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})

	t.Run("Resolve valid token looks up user", func(t *testing.T) {
		fake := &fakeGotrue{user: testUser()}
		token := &oauth2.Token{AccessToken: "current", Expiry: time.Now().Add(time.Hour)}

		session, err := newTestAuth(fake).Resolve(ctx, token)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if session.Token != token || fake.token != "current" {
			t.Errorf("expected same token and user lookup with it, got %+v / %q", session.Token, fake.token)
		}
		if len(fake.requests) != 0 {
			t.Error("expected no refresh for a valid token")
		}
	})

	t.Run("Resolve expired token refreshes", func(t *testing.T) {
		fake := &fakeGotrue{user: testUser()}
		token := &oauth2.Token{AccessToken: "old", RefreshToken: "r1", Expiry: time.Now().Add(-time.Minute)}

		session, err := newTestAuth(fake).Resolve(ctx, token)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if session.Token.AccessToken != "access-refresh_token" {
			t.Errorf("expected refreshed token, got %s", session.Token.AccessToken)
		}
		if fake.requests[0].RefreshToken != "r1" {
			t.Errorf("expected refresh with r1, got %+v", fake.requests[0])
		}
	})

	t.Run("Resolve rejected token", func(t *testing.T) {
		fake := &fakeGotrue{userErr: errors.New("jwt expired")}
		_, err := newTestAuth(fake).Resolve(ctx, &oauth2.Token{AccessToken: "bad"})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("SignOut", func(t *testing.T) {
		fake := &fakeGotrue{}
		if err := newTestAuth(fake).SignOut(ctx, "tok"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !fake.loggedOut || fake.token != "tok" {
			t.Error("expected logout with the session token")
		}

		fake = &fakeGotrue{logoutErr: errors.New("network")}
		if err := newTestAuth(fake).SignOut(ctx, "tok"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("AuthorizeURL", func(t *testing.T) {
		raw := newTestAuth(&fakeGotrue{}).AuthorizeURL("google", "http://localhost:3000/auth/callback", "chal")
		if !strings.HasPrefix(raw, "https://abc.supabase.co/auth/v1/authorize?") {
			t.Fatalf("unexpected url %s", raw)
		}
		u, _ := url.Parse(raw)
		q := u.Query()
		if q.Get("provider") != "google" || q.Get("code_challenge") != "chal" || q.Get("code_challenge_method") != "s256" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("redirect_to") != "http://localhost:3000/auth/callback" {
			t.Errorf("unexpected redirect_to %s", q.Get("redirect_to"))
		}
	})
}

func TestToUser(t *testing.T) {
	u := testUser()
	u.UserMetadata = map[string]interface{}{"name": "Ana"}
	if got := toUser(u); got.DisplayName != "Ana" {
		t.Errorf("expected name fallback, got %+v", got)
	}

	u.UserMetadata = nil
	if got := toUser(u); got.DisplayName != "" || got.Email != "ana@example.com" {
		t.Errorf("unexpected user %+v", got)
	}
}
