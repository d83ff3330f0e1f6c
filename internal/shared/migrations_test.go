package shared

import (
	"context"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
			if m.Name == "" {
				t.Errorf("migration version %d missing name", m.Version)
			}
		}

		if migrations[0].Name != "create_agents" {
			t.Errorf("expected first migration create_agents, got %s", migrations[0].Name)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT 1 FROM agent_configs LIMIT 1"); err != nil {
			t.Errorf("agent_configs table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(ctx, db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount); err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}
	})

	t.Run("Rollback everything", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		for range migrations {
			if err := RollbackMigration(ctx, db); err != nil {
				t.Fatalf("failed to rollback migration: %v", err)
			}
		}

		if _, err := db.Exec("SELECT 1 FROM agent_configs LIMIT 1"); err == nil {
			t.Error("agent_configs table should be gone after full rollback")
		}

		if err := RollbackMigration(ctx, db); err == nil {
			t.Error("expected error when nothing is left to roll back")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		statuses, err := Migrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to list migrations: %v", err)
		}

		for _, s := range statuses {
			if !s.Applied {
				t.Errorf("expected migration %d to be applied", s.Version)
			}
		}
	})

	t.Run("Migrations on fresh database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		statuses, err := Migrations(ctx, db)
		if err != nil {
			t.Fatalf("failed to list migrations: %v", err)
		}
		for _, s := range statuses {
			if s.Applied {
				t.Errorf("expected migration %d to be pending", s.Version)
			}
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `-- header
CREATE TABLE a (id INTEGER); -- trailing
;
INSERT INTO a VALUES (1);
`
	got := SplitStatements(script)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("unexpected first statement %q", got[0])
	}
	if got[1] != "INSERT INTO a VALUES (1)" {
		t.Errorf("unexpected second statement %q", got[1])
	}
}
