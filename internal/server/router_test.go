package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type routesHandler struct{}

func (routesHandler) Routes() []string { return []string{"GET /a", "GET /b"} }
func (routesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("routes:" + r.URL.Path))
}

func TestBasicRouter(t *testing.T) {
	t.Run("Handle matches method", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc("get", "/hello", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("hi"))
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "hi" {
			t.Errorf("expected 200 hi, got %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hello", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Path values", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/items/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(r.PathValue("id")))
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
		if rec.Body.String() != "42" {
			t.Errorf("expected 42, got %q", rec.Body.String())
		}
	})

	t.Run("Handler registers all routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(routesHandler{})

		for _, path := range []string{"/a", "/b"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "routes:"+path {
				t.Errorf("unexpected body for %s: %q", path, rec.Body.String())
			}
		}
	})

	t.Run("NotFound catches unknown paths", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/{$}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("home"))
		})
		router.NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("missing"))
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Body.String() != "home" {
			t.Errorf("expected home, got %q", rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if rec.Code != http.StatusNotFound || rec.Body.String() != "missing" {
			t.Errorf("expected 404 missing, got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("NotFound answers 405 for a known path", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/api/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
		router.NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
			t.Errorf("expected GET in Allow, got %q", allow)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown path, got %d", rec.Code)
		}
	})

	t.Run("Middleware order", func(t *testing.T) {
		router := NewBasicRouter()
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		router.Use(tag("first"), tag("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})
}
