// Package repositories implements SQLite persistence for agent configurations.
//
// [AgentRepository] implements [models.Repository] for [models.Agent]. It is the store used when
// database.driver is "sqlite" (local development and tests); the Supabase-backed store lives in internal/supabase.
//
// Deletes are soft (deleted_at) and deleted rows are excluded from every query.
// Sequence numbers give stable ordering independent of UUIDs; [NextSequence] increments a per-table counter.
package repositories
