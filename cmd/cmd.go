// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func claimsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "claims",
			Usage: "Identity provider claims as a JSON object",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read claims from a JSON file (- for stdin)",
		},
	}
}

func emailFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "email",
		Aliases:  []string{"e"},
		Usage:    "User email address",
		Required: required,
	}
}

func songFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "song",
		Aliases:  []string{"s"},
		Usage:    "Public id (UUID) of the song",
		Required: true,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// setupCommand initializes the database and configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// migrateCommand inspects and rolls back schema migrations
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show applied migrations",
				Action: r.MigrationStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.MigrationRollback,
			},
		},
	}
}

// serveCommand runs the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server with login, session and favorites endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

// userCommand handles user reconciliation and lookup
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Reconcile and inspect users",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Reconcile a user from identity provider claims",
				Flags:  claimsFlags(),
				Action: r.UserSync,
			},
			{
				Name:  "import",
				Usage: "Reconcile many users from a JSON array or JSON lines of claims",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Claims file (- for stdin)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Claim sets reconciled per second (0 for unlimited)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the import report as JSON",
					},
				},
				Action: r.UserImport,
			},
			{
				Name:   "claims",
				Usage:  "Show the user that claims map to without saving it",
				Flags:  append(claimsFlags(), outputFlags()...),
				Action: r.UserClaims,
			},
			{
				Name:   "show",
				Usage:  "Show a user by email",
				Flags:  append([]cli.Flag{emailFlag(true)}, outputFlags()...),
				Action: r.UserShow,
			},
			{
				Name:   "list",
				Usage:  "List all users",
				Flags:  outputFlags(),
				Action: r.UserList,
			},
		},
	}
}

// favoriteCommand handles favorite songs
func favoriteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorite",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite songs",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Mark a song as a favorite of a user",
				Flags:  []cli.Flag{emailFlag(true), songFlag()},
				Action: r.FavoriteAdd,
			},
			{
				Name:   "remove",
				Usage:  "Remove a song from a user's favorites",
				Flags:  []cli.Flag{emailFlag(true), songFlag()},
				Action: r.FavoriteRemove,
			},
			{
				Name:   "list",
				Usage:  "List a user's favorites",
				Flags:  append([]cli.Flag{emailFlag(true)}, outputFlags()...),
				Action: r.FavoriteList,
			},
			{
				Name:  "export",
				Usage: "Export a user's favorites to a file",
				Flags: []cli.Flag{
					emailFlag(true),
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, json, markdown, txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default: {user}_favorites.{ext})",
					},
				},
				Action: r.FavoriteExport,
			},
			{
				Name:   "fans",
				Usage:  "List the users who favorited a song",
				Flags:  append([]cli.Flag{songFlag()}, outputFlags()...),
				Action: r.FavoriteFans,
			},
		},
	}
}

// tuiCommand launches the favorites browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse and remove a user's favorites interactively",
		Flags:  []cli.Flag{emailFlag(true)},
		Action: r.TUI,
	}
}
