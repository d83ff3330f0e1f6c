package server

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wrote {
		s.status = code
		s.wrote = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wrote {
		s.status = http.StatusOK
		s.wrote = true
	}
	return s.ResponseWriter.Write(b)
}

// Logging logs one line per request with method, path, status and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
				"duration", time.Since(start).Round(time.Microsecond))
		})
	}
}

// Recover turns a panicking handler into a 500 produced by fallback, reporting the panic first.
//
// If the handler already started writing, only the report happens.
func Recover(reporter ErrorReporter, fallback http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				reporter.LogError(r.Context(), fmt.Errorf("panic: %v", v), "path", r.URL.Path, "method", r.Method)
				if !rec.wrote {
					fallback.ServeHTTP(w, r)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// RequireSession redirects requests without a valid session to loginPath?next=<request path>.
//
// The cookie token is passed to resolver, which may refresh it; a refreshed token is written back.
// A failed resolution clears the session cookies.
func RequireSession(store *CookieStore, resolver SessionResolver, loginPath string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := store.Read(r)
			if err != nil {
				redirectToLogin(w, r, loginPath)
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				store.Clear(w)
				redirectToLogin(w, r, loginPath)
				return
			}

			if session.Token != nil && session.Token.AccessToken != token.AccessToken {
				store.Write(w, session.Token)
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}
