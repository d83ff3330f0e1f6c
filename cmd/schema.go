package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/agentes/internal/schema"
	"github.com/desertthunder/agentes/internal/shared"
	"github.com/desertthunder/agentes/internal/supabase"
	"github.com/urfave/cli/v3"
)

// SchemaGenerate echoes the schema, writes a copy and prints the setup steps.
func (r *Runner) SchemaGenerate(ctx context.Context, cmd *cli.Command) error {
	var echo io.Writer = r.output
	if cmd.Bool("quiet") {
		echo = nil
	}

	result, err := schema.Generate(schema.GenerateOptions{
		Input:  cmd.String("input"),
		Output: cmd.String("output"),
		Stdout: echo,
	})
	if err != nil {
		return err
	}

	r.logger.Info("schema copied", "from", result.Input, "to", result.Output, "bytes", result.Bytes)
	r.writePlain("\n%s\n", r.palette.OK(fmt.Sprintf("SQL copiado para %s", result.Output)))
	return r.writePlain("%s", r.palette.Steps("Como configurar o banco no Supabase", result.Instructions))
}

// SchemaApply executes the schema over a direct Postgres connection.
func (r *Runner) SchemaApply(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	dsn := config.Supabase.DBURL
	if dsn == "" {
		password := cmd.String("db-password")
		if password == "" {
			password, _ = r.lookup("SUPABASE_DB_PASSWORD")
		}
		if password == "" {
			return fmt.Errorf("%w: set SUPABASE_DB_URL or pass --db-password", shared.ErrMissingConfig)
		}
		if dsn, err = supabase.ProjectDSN(config.Supabase.URL, password); err != nil {
			return err
		}
	}

	script, err := schema.Load(cmd.String("input"))
	if err != nil {
		return err
	}

	db, err := supabase.Connect(ctx, supabase.PostgresConfig{DSN: dsn, MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("applying schema", "input", cmd.String("input"))
	if err := supabase.ApplySchema(ctx, db, script); err != nil {
		return err
	}

	return r.writePlain("%s\n", r.palette.OK("Schema aplicado"))
}
