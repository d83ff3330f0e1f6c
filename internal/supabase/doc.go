// Package supabase wraps the Supabase Go SDK for the web application.
//
// # Clients
//
// [Factory] is the only place SDK clients are built. It replaces three near-identical constructors with one
// helper and four entry points:
//
//   - [Factory.Public] : project URL + anon key, for unauthenticated calls
//   - [Factory.ForRequest] : anon key plus the caller's access token read from the request cookies, so
//     row-level security applies to that user
//   - [Factory.Admin] : project URL + service-role key; fails with [shared.ErrMissingCredentials] when either is absent
//   - [Factory.SafeAdmin] : Admin with every failure (including a panic inside the SDK) flattened into a message
//
// # Auth
//
// [AuthService] signs users in with a password or an OAuth PKCE code, refreshes and validates tokens and
// implements [server.SessionResolver].
//
// # Storage
//
// [AgentStore] implements [models.Repository] for agents on the agent_configs table through PostgREST.
// [Connect] and [ApplySchema] talk to the project's Postgres directly over pgx for schema management.
package supabase
