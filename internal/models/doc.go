// Package models defines domain entities and persistence interfaces for the Agentes de Conversão dashboard.
//
//   - [Agent] : a conversational agent configuration owned by a user (one row of agent_configs)
//   - [User] : the authenticated account as reported by Supabase auth
//
// Persistent entities implement [Model], providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations; it is implemented for a local SQLite store
// (internal/repositories) and for Supabase's REST API (internal/supabase).
package models
