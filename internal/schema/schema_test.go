package schema

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/agentes/internal/shared"
)

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write schema: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		script, err := Load(writeSchema(t, "create table t (id int);\n"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(script, "create table t") {
			t.Errorf("unexpected script %q", script)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.sql"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("blank file", func(t *testing.T) {
		_, err := Load(writeSchema(t, "  \n\t"))
		if !errors.Is(err, shared.ErrEmptySchema) {
			t.Errorf("expected ErrEmptySchema, got %v", err)
		}
	})
}

func TestGenerate(t *testing.T) {
	t.Run("echoes and copies", func(t *testing.T) {
		input := writeSchema(t, "create table t (id int);")
		output := filepath.Join(t.TempDir(), "nested", "copy.sql")
		var stdout bytes.Buffer

		result, err := Generate(GenerateOptions{Input: input, Output: output, Stdout: &stdout})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if stdout.String() != "create table t (id int);\n" {
			t.Errorf("unexpected stdout %q", stdout.String())
		}
		copied, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("expected copy at %s: %v", output, err)
		}
		if string(copied) != "create table t (id int);" {
			t.Errorf("unexpected copy %q", copied)
		}
		if result.Bytes != len(copied) || result.Output != output {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Instructions) == 0 || !strings.Contains(strings.Join(result.Instructions, "\n"), output) {
			t.Errorf("expected instructions naming the copy, got %v", result.Instructions)
		}
	})

	t.Run("missing input writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		output := filepath.Join(dir, "copy.sql")

		if _, err := Generate(GenerateOptions{Input: filepath.Join(dir, "missing.sql"), Output: output}); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected no output file")
		}
	})

	t.Run("repository schema is valid input", func(t *testing.T) {
		script, err := Load(filepath.Join("..", "..", DefaultInput))
		if err != nil {
			t.Fatalf("expected bundled schema to load: %v", err)
		}
		for _, want := range []string{"agent_configs", "enable row level security", "auth.uid()"} {
			if !strings.Contains(script, want) {
				t.Errorf("expected %q in schema", want)
			}
		}
	})
}
