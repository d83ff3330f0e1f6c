// Package server provides HTTP routing, middleware, and session cookie handling for the web application.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /path"), so requests with
// another method get 405 from the mux and path wildcards are read with [http.Request.PathValue].
//
// # Sessions
//
// [CookieStore] keeps the Supabase session as an [oauth2.Token] split over three HttpOnly cookies.
// [RequireSession] gates routes on it: requests without a usable session are redirected to the login page
// with a "next" parameter, and the resolved [Session] is placed in the request context.
//
// # OAuth state
//
// [PKCECookies] stores the state and PKCE verifier of an in-flight OAuth login in short-lived cookies and
// validates the callback's state parameter against them (CSRF protection). Each pair is consumed once.
package server
