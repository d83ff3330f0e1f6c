// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/server"
	"github.com/desertthunder/agentes/internal/shared"
	"golang.org/x/oauth2"
)

// FakeAuth is an in-memory stand-in for the Supabase auth service.
//
// Passwords maps email to password; every successful sign-in or exchange issues "token-<email>".
type FakeAuth struct {
	mu         sync.Mutex
	Passwords  map[string]string
	Codes      map[string]string // authorization code → email
	Err        error             // returned by every call when set
	SignOutErr error
	Signouts   []string
	Verifiers  []string
	sessions   map[string]*server.Session
}

// NewFakeAuth creates a [FakeAuth] knowing one user.
func NewFakeAuth(email, password string) *FakeAuth {
	return &FakeAuth{
		Passwords: map[string]string{email: password},
		Codes:     map[string]string{},
		sessions:  map[string]*server.Session{},
	}
}

// Login registers a session for email directly and returns its access token.
func (f *FakeAuth) Login(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issue(email).Token.AccessToken
}

func (f *FakeAuth) issue(email string) *server.Session {
	session := &server.Session{
		Token: &oauth2.Token{
			AccessToken:  "token-" + email,
			RefreshToken: "refresh-" + email,
			Expiry:       time.Now().Add(time.Hour),
		},
		User: models.User{ID: "user-" + email, Email: email},
	}
	f.sessions[session.Token.AccessToken] = session
	return session
}

func (f *FakeAuth) SignIn(_ context.Context, email, password string) (*server.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if want, ok := f.Passwords[email]; !ok || want != password {
		return nil, shared.ErrAuthFailed
	}
	return f.issue(email), nil
}

func (f *FakeAuth) Exchange(_ context.Context, code, verifier string) (*server.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Verifiers = append(f.Verifiers, verifier)
	email, ok := f.Codes[code]
	if !ok {
		return nil, shared.ErrAuthFailed
	}
	return f.issue(email), nil
}

func (f *FakeAuth) SignOut(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Signouts = append(f.Signouts, accessToken)
	delete(f.sessions, accessToken)
	return f.SignOutErr
}

func (f *FakeAuth) Resolve(_ context.Context, token *oauth2.Token) (*server.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	session, ok := f.sessions[token.AccessToken]
	if !ok {
		return nil, shared.ErrNotAuthenticated
	}
	return session, nil
}

func (f *FakeAuth) AuthorizeURL(provider, redirectTo, challenge string) string {
	return "https://auth.example.test/authorize?provider=" + provider + "&redirect_to=" + redirectTo +
		"&code_challenge=" + challenge
}

// RecordingReporter collects reported errors and tracked events.
type RecordingReporter struct {
	mu     sync.Mutex
	Errors []error
	Events []string
}

func (r *RecordingReporter) LogError(_ context.Context, err error, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

func (r *RecordingReporter) Track(_ context.Context, name string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, name)
}

// HasEvent reports whether name was tracked.
func (r *RecordingReporter) HasEvent(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Events {
		if e == name {
			return true
		}
	}
	return false
}

// MustOpenDB opens an in-memory SQLite database with all migrations applied, closed on cleanup.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
