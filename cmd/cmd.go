// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/agentes/internal/schema"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand starts the web server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the site and the agent dashboard",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the site in the default browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, then initialize the SQLite database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent SQLite migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.RollbackDatabase,
			},
		},
	}
}

// schemaCommand handles the Supabase SQL schema.
func schemaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Supabase SQL schema tools",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Print the schema, copy it and show how to install it in Supabase",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Schema file to read",
						Value:   schema.DefaultInput,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the copy",
						Value:   schema.DefaultOutput,
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not echo the schema",
					},
				},
				Action: r.SchemaGenerate,
			},
			{
				Name:  "apply",
				Usage: "Execute the schema against the project database (SUPABASE_DB_URL)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Schema file to execute",
						Value:   schema.DefaultInput,
					},
					&cli.StringFlag{
						Name:  "db-password",
						Usage: "Database password, used with the project URL when SUPABASE_DB_URL is not set",
					},
				},
				Action: r.SchemaApply,
			},
		},
	}
}

// healthCommand probes a running server.
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check /api/health of a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the server",
				Value: "http://localhost:3000",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Health,
	}
}
