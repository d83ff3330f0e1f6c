// Package schema prepares the Supabase SQL schema for manual setup.
package schema

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/agentes/internal/shared"
)

const (
	DefaultInput  = "supabase/schema.sql"
	DefaultOutput = "supabase/schema_copy.sql"
)

// GenerateOptions configures [Generate]. Empty paths fall back to the defaults; a nil Stdout skips the echo.
type GenerateOptions struct {
	Input  string
	Output string
	Stdout io.Writer
}

// Result describes a generated copy.
type Result struct {
	Input        string
	Output       string
	Bytes        int
	Instructions []string
}

// Load reads the schema at path. A missing or blank file is an error.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrEmptySchema, path)
	}
	return string(data), nil
}

// Generate reads the schema, echoes it to opts.Stdout and writes a copy to opts.Output.
func Generate(opts GenerateOptions) (*Result, error) {
	if opts.Input == "" {
		opts.Input = DefaultInput
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}

	script, err := Load(opts.Input)
	if err != nil {
		return nil, err
	}

	if opts.Stdout != nil {
		if _, err := io.WriteString(opts.Stdout, script); err != nil {
			return nil, fmt.Errorf("failed to write schema: %w", err)
		}
		if !strings.HasSuffix(script, "\n") {
			_, _ = io.WriteString(opts.Stdout, "\n")
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(opts.Output, []byte(script), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write schema copy: %w", err)
	}

	return &Result{
		Input:        opts.Input,
		Output:       opts.Output,
		Bytes:        len(script),
		Instructions: Instructions(opts.Output),
	}, nil
}

// Instructions lists the steps to install the copy at output in a Supabase project.
func Instructions(output string) []string {
	return []string{
		"Abra o painel do seu projeto em https://supabase.com/dashboard",
		"Acesse SQL Editor e crie uma nova consulta",
		fmt.Sprintf("Cole o conteúdo de %s (exibido acima)", output),
		"Execute a consulta e confira a tabela agent_configs em Table Editor",
		"Ou rode `agentes schema apply` com SUPABASE_DB_URL definido",
	}
}
